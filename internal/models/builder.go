package models

// FinalizePolicy decides what Build does with an unset slot
type FinalizePolicy int

const (
	// PolicyZero substitutes the zero value of the field type
	PolicyZero FinalizePolicy = iota
	// PolicyRequired panics when the slot was never set
	PolicyRequired
)

// String returns the string representation of the policy
func (p FinalizePolicy) String() string {
	if p == PolicyRequired {
		return "required"
	}
	return "zero"
}

// BuilderDefinition is the synthesized companion type for one record
type BuilderDefinition struct {
	Record      string      // record type name
	Name        string      // builder type name
	TypeParams  []TypeParam // copied verbatim from the record
	Slots       []StorageSlot
	Factory     FactoryMethod
	Constructor Constructor
	Setters     []Setter
	Finalizer   Finalizer
}

// StorageSlot is one optional field of the builder, stored as *Type
type StorageSlot struct {
	Name string   // slot name, same as the record field
	Type TypeExpr // record field type
}

// FactoryMethod is the zero-argument method on the record returning a fresh builder
type FactoryMethod struct {
	Name string
}

// Constructor is the package-level function returning an empty builder
type Constructor struct {
	Name string
}

// Setter assigns one slot and returns the builder by value
type Setter struct {
	Name  string   // method name
	Slot  string   // slot assigned
	Param TypeExpr // parameter type
}

// Finalizer converts the builder into a record
type Finalizer struct {
	Name  string
	Steps []FinalizeStep
}

// FinalizeStep produces one record field
type FinalizeStep struct {
	Field  string         // record field assigned
	Slot   string         // slot read
	Policy FinalizePolicy // behavior for an unset slot
	Label  string         // "Record.Field", used in the required panic message
}

// TypeParamList returns the builder's type parameter declaration list
func (b *BuilderDefinition) TypeParamList() string {
	return TypeParamList(b.TypeParams)
}

// TypeArgs returns the instantiation list shared by the record and the builder
func (b *BuilderDefinition) TypeArgs() string {
	return TypeArgList(b.TypeParams)
}

// BuilderType returns the instantiated builder type, e.g. "PairBuilder[K, V]"
func (b *BuilderDefinition) BuilderType() string {
	return b.Name + b.TypeArgs()
}

// RecordType returns the instantiated record type, e.g. "Pair[K, V]"
func (b *BuilderDefinition) RecordType() string {
	return b.Record + b.TypeArgs()
}

// HasRequired reports whether any finalize step uses PolicyRequired
func (b *BuilderDefinition) HasRequired() bool {
	for _, step := range b.Finalizer.Steps {
		if step.Policy == PolicyRequired {
			return true
		}
	}
	return false
}

// IsRequired reports whether Build panics when the slot is unset
func (s FinalizeStep) IsRequired() bool {
	return s.Policy == PolicyRequired
}
