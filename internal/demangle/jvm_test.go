package demangle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJVM(t *testing.T) {
	tests := []struct {
		name    string
		mangled string
		want    string
		ok      bool
	}{
		{
			name:    "primitives and objects",
			mangled: "com/example/Foo::bar (ILjava/lang/String;[[J)V",
			want:    "void com.example.Foo::bar(int, String, long[][])",
			ok:      true,
		},
		{
			name:    "no arguments",
			mangled: "Foo::size ()I",
			want:    "int Foo::size()",
			ok:      true,
		},
		{
			name:    "constructor",
			mangled: "com/example/Greeter::<init> (Ljava/lang/String;)V",
			want:    "void com.example.Greeter::<init>(String)",
			ok:      true,
		},
		{
			name:    "all primitive codes",
			mangled: "P::all (BCDFIJSZ)V",
			want:    "void P::all(bool, char, double, float, int, long, short, boolean)",
			ok:      true,
		},
		{
			name:    "array of objects returned",
			mangled: "a/B::names ()[Ljava/lang/String;",
			want:    "String[] a.B::names()",
			ok:      true,
		},
		{
			name:    "nested class keeps dollar",
			mangled: "a/Outer$Inner::run (La/Outer$Inner;)Z",
			want:    "boolean a.Outer$Inner::run(Outer$Inner)",
			ok:      true,
		},
		{name: "unknown descriptor", mangled: "Foo::bar (Q)V"},
		{name: "unterminated object", mangled: "Foo::bar (Ljava/lang/String)V"},
		{name: "dangling array", mangled: "Foo::bar ([)V"},
		{name: "empty class name", mangled: "Foo::bar (Ljava/;)V"},
		{name: "two return types", mangled: "Foo::bar ()II"},
		{name: "c++ mangled", mangled: "_ZN3foo3barEv"},
		{name: "plain name", mangled: "abc"},
		{name: "missing space", mangled: "Foo::bar(I)V"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := JVM(tt.mangled)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
