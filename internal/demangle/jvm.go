package demangle

import (
	"regexp"
	"strings"
)

// reJVMMethod matches "pkg/Class::method (argDescriptors)returnDescriptor".
var reJVMMethod = regexp.MustCompile(`^(\S+)::([^\s:]+) \(([^()\s]*)\)([^()\s]+)$`)

var jvmPrimitives = map[byte]string{
	'B': "bool",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
	'V': "void",
}

// JVM decodes JaCoCo-style method names such as
// "com/example/Foo::bar (ILjava/lang/String;[[J)V" into
// "void com.example.Foo::bar(int, String, long[][])".
// Any unknown descriptor character or unterminated object type rejects the
// whole name.
func JVM(mangled string) (string, bool) {
	m := reJVMMethod.FindStringSubmatch(mangled)
	if m == nil {
		return "", false
	}
	className, method, argDesc, retDesc := m[1], m[2], m[3], m[4]

	args, ok := parseDescriptors(argDesc)
	if !ok {
		return "", false
	}
	ret, ok := parseDescriptors(retDesc)
	if !ok || len(ret) != 1 {
		return "", false
	}

	owner := strings.ReplaceAll(className, "/", ".")
	return ret[0] + " " + owner + "::" + method + "(" + strings.Join(args, ", ") + ")", true
}

// parseDescriptors decodes a concatenation of JVM field descriptors.
func parseDescriptors(desc string) ([]string, bool) {
	types := []string{}
	for i := 0; i < len(desc); {
		dims := 0
		for i < len(desc) && desc[i] == '[' {
			dims++
			i++
		}
		if i >= len(desc) {
			return nil, false
		}

		var name string
		if desc[i] == 'L' {
			end := strings.IndexByte(desc[i:], ';')
			if end < 0 {
				return nil, false
			}
			class := desc[i+1 : i+end]
			if slash := strings.LastIndexByte(class, '/'); slash >= 0 {
				class = class[slash+1:]
			}
			if class == "" {
				return nil, false
			}
			name = class
			i += end + 1
		} else {
			prim, ok := jvmPrimitives[desc[i]]
			if !ok {
				return nil, false
			}
			name = prim
			i++
		}

		types = append(types, name+strings.Repeat("[]", dims))
	}
	return types, true
}
