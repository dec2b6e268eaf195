package ast

// access_flags bits (JVMS 4.1, 4.5, 4.6). Several bits are shared between
// contexts: 0x0020 is ACC_SUPER on classes and ACC_SYNCHRONIZED on methods.
const (
	AccPublic       uint16 = 0x0001
	AccPrivate      uint16 = 0x0002
	AccProtected    uint16 = 0x0004
	AccStatic       uint16 = 0x0008
	AccFinal        uint16 = 0x0010
	AccSuper        uint16 = 0x0020
	AccSynchronized uint16 = 0x0020
	AccVolatile     uint16 = 0x0040
	AccBridge       uint16 = 0x0040
	AccTransient    uint16 = 0x0080
	AccVarargs      uint16 = 0x0080
	AccNative       uint16 = 0x0100
	AccInterface    uint16 = 0x0200
	AccAbstract     uint16 = 0x0400
	AccStrict       uint16 = 0x0800
	AccSynthetic    uint16 = 0x1000
	AccAnnotation   uint16 = 0x2000
	AccEnum         uint16 = 0x4000
	AccModule       uint16 = 0x8000
)

// Flag pairs an access flag keyword with its bit.
type Flag struct {
	Name string
	Bit  uint16
}

var ClassFlags = []Flag{
	{"public", AccPublic},
	{"final", AccFinal},
	{"super", AccSuper},
	{"interface", AccInterface},
	{"abstract", AccAbstract},
	{"synthetic", AccSynthetic},
	{"annotation", AccAnnotation},
	{"enum", AccEnum},
	{"module", AccModule},
}

var FieldFlags = []Flag{
	{"public", AccPublic},
	{"private", AccPrivate},
	{"protected", AccProtected},
	{"static", AccStatic},
	{"final", AccFinal},
	{"volatile", AccVolatile},
	{"transient", AccTransient},
	{"synthetic", AccSynthetic},
	{"enum", AccEnum},
}

var MethodFlags = []Flag{
	{"public", AccPublic},
	{"private", AccPrivate},
	{"protected", AccProtected},
	{"static", AccStatic},
	{"final", AccFinal},
	{"synchronized", AccSynchronized},
	{"bridge", AccBridge},
	{"varargs", AccVarargs},
	{"native", AccNative},
	{"abstract", AccAbstract},
	{"strict", AccStrict},
	{"synthetic", AccSynthetic},
}

// LookupFlag finds word in flags.
func LookupFlag(flags []Flag, word string) (uint16, bool) {
	for _, f := range flags {
		if f.Name == word {
			return f.Bit, true
		}
	}
	return 0, false
}

// FlagNames lists the keywords whose bits are set, in table order.
func FlagNames(flags []Flag, bits uint16) []string {
	var names []string
	for _, f := range flags {
		if bits&f.Bit != 0 {
			names = append(names, f.Name)
		}
	}
	return names
}

type ClassAccess uint16

func (a ClassAccess) Names() []string           { return FlagNames(ClassFlags, uint16(a)) }
func (a ClassAccess) MarshalYAML() (any, error) { return a.Names(), nil }

type FieldAccess uint16

func (a FieldAccess) Names() []string           { return FlagNames(FieldFlags, uint16(a)) }
func (a FieldAccess) MarshalYAML() (any, error) { return a.Names(), nil }

type MethodAccess uint16

func (a MethodAccess) Names() []string           { return FlagNames(MethodFlags, uint16(a)) }
func (a MethodAccess) MarshalYAML() (any, error) { return a.Names(), nil }
