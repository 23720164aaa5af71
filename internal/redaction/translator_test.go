package redaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToXMLPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "recursive descent with predicates",
			path: "$..Vocabulary[?(@.type=='X')]..attribute[?(@.id==='Y')].value",
			want: "//Vocabulary//attribute",
		},
		{
			name: "simple absolute path",
			path: "$.Header.Sender.Identifier",
			want: "/Header/Sender/Identifier",
		},
		{
			name: "trailing value stripped",
			path: "$.Body.Field.value",
			want: "/Body/Field",
		},
		{
			name: "attribute reference",
			path: "$..Element.@.id",
			want: "//Element/@id",
		},
		{
			name: "predicate only segment",
			path: "$..Item[?(@.kind=='secret')]",
			want: "//Item",
		},
		{
			name: "value as element name survives when not trailing",
			path: "$..value.inner",
			want: "//value/inner",
		},
		{
			name: "empty input",
			path: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToXMLPath(tt.path))
		})
	}
}

func TestToXMLPath_Deterministic(t *testing.T) {
	path := "$..Vocabulary[?(@.type=='X')]..attribute[?(@.id==='Y')].value"
	first := ToXMLPath(path)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ToXMLPath(path))
	}
}
