package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanCodeRemovesFences(t *testing.T) {
	input := "```java\npackage de.example;\n\npublic class FooTest {\n}\n```"
	want := "package de.example;\n\npublic class FooTest {\n}"
	assert.Equal(t, want, CleanCode(input))
}

func TestCleanCodeFenceWithoutLanguageTag(t *testing.T) {
	input := "```\nclass A {}\n```"
	assert.Equal(t, "class A {}", CleanCode(input))
}

func TestCleanCodeLeavesPlainCodeUntouched(t *testing.T) {
	input := "package de.example;\n\npublic class FooTest {\n\n    // comment\n}\n"
	assert.Equal(t, input, CleanCode(input))
}

func TestCleanCodePreservesBlankLines(t *testing.T) {
	input := "```java\nline one\n\n\nline two\n```"
	assert.Equal(t, "line one\n\n\nline two", CleanCode(input))
}

func TestCleanCodeIndentedFence(t *testing.T) {
	input := "  ```java\ncode\n  ```"
	assert.Equal(t, "code", CleanCode(input))
}
