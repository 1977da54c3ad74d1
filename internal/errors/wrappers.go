package errors

import "fmt"

// Common error wrapping patterns used by the generator and the CLI

// WrapWithOperation wraps an error with an operation context
func WrapWithOperation(operation, item string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s %s", operation, item)
	return Wrap(UnknownErrorCode, message, cause)
}

// WrapGenerateError wraps an error with a "failed to generate" message
func WrapGenerateError(item string, cause error) *BaseError {
	message := fmt.Sprintf("failed to generate %s", item)
	return Wrap(GenerationErrorCode, message, cause)
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause)
}

// WrapTemplateError wraps template processing errors
func WrapTemplateError(templateName, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s template '%s'", operation, templateName)
	return Wrap(TemplateErrorCode, message, cause)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(source, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, source)
	return Wrap(ConfigurationErrorCode, message, cause)
}

// ConfigurationError creates a configuration error
func ConfigurationError(source, message string) *BaseError {
	fullMessage := fmt.Sprintf("configuration error in '%s': %s", source, message)
	return New(ConfigurationErrorCode, fullMessage)
}
