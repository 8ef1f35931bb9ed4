package extension

// Kind identifies which platform slot an extension class is registered in.
type Kind string

const (
	KindExtension Kind = "extension"
	KindWebApp    Kind = "webapp"
	KindAnvil     Kind = "anvil"
)

// Family is a base class provided by the platform SDK.
type Family string

const (
	FamilyExtension       Family = "Extension"
	FamilyEventsExtension Family = "EventsExtension"
	FamilyWebApp          Family = "WebAppExtension"
	FamilyAnvil           Family = "AnvilExtension"
)

var kindFamilies = map[Kind][]Family{
	KindExtension: {FamilyExtension, FamilyEventsExtension},
	KindWebApp:    {FamilyWebApp},
	KindAnvil:     {FamilyAnvil},
}

var kindBaseNames = map[Kind]string{
	KindExtension: "connect.eaas.core.extension.[Events]Extension",
	KindWebApp:    "connect.eaas.core.extension.WebAppExtension",
	KindAnvil:     "connect.eaas.core.extension.AnvilExtension",
}

// AllKinds returns every kind in registration order.
func AllKinds() []Kind {
	return []Kind{KindExtension, KindWebApp, KindAnvil}
}

// ParseKind converts a string to a Kind, returning false if invalid.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "extension":
		return KindExtension, true
	case "webapp":
		return KindWebApp, true
	case "anvil":
		return KindAnvil, true
	default:
		return "", false
	}
}

// Families returns the SDK base classes a class of this kind may derive from.
func (k Kind) Families() []Family {
	return kindFamilies[k]
}

// BaseName is the fully qualified SDK base class shown in diagnostics.
func (k Kind) BaseName() string {
	return kindBaseNames[k]
}

// Accepts reports whether c derives from one of the families of k.
func (k Kind) Accepts(c Class) bool {
	for _, have := range c.Families() {
		for _, want := range k.Families() {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Registry maps each declared kind to its loaded class.
type Registry map[Kind]Class

// Kinds returns the declared kinds in registration order.
func (r Registry) Kinds() []Kind {
	var kinds []Kind
	for _, k := range AllKinds() {
		if _, ok := r[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Get returns the class registered for k.
func (r Registry) Get(k Kind) (Class, bool) {
	c, ok := r[k]
	return c, ok
}

func isFamily(name string) (Family, bool) {
	switch Family(name) {
	case FamilyExtension, FamilyEventsExtension, FamilyWebApp, FamilyAnvil:
		return Family(name), true
	}
	return "", false
}
