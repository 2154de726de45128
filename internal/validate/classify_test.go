package validate

import (
	"strings"
	"testing"

	"github.com/joss/testsmith/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassifyKinds(t *testing.T) {
	cases := []struct {
		name   string
		output string
		want   domain.FailureKind
	}{
		{
			name:   "doNothing on non-void",
			output: "org.mockito.exceptions.base.MockitoException: \nOnly void methods can doNothing()!",
			want:   domain.FailDoNothingNonVoid,
		},
		{
			name:   "not a mock",
			output: "org.mockito.exceptions.misusing.NotAMockException: Argument should be a mock",
			want:   domain.FailNotAMock,
		},
		{
			name:   "potential stubbing",
			output: "org.mockito.exceptions.misusing.PotentialStubbingProblem: strict stubbing",
			want:   domain.FailPotentialStubbing,
		},
		{
			name:   "unnecessary stubbing",
			output: "org.mockito.exceptions.misusing.UnnecessaryStubbingException",
			want:   domain.FailUnnecessaryStubbing,
		},
		{
			name:   "invalid matchers",
			output: "InvalidUseOfMatchersException: 2 matchers expected",
			want:   domain.FailInvalidMatchers,
		},
		{
			name:   "wrong return type",
			output: "WrongTypeOfReturnValue: String cannot be returned by findById()",
			want:   domain.FailWrongReturnType,
		},
		{
			name:   "unfinished stubbing",
			output: "UnfinishedStubbingException: Unfinished stubbing detected",
			want:   domain.FailUnfinishedStubbing,
		},
		{
			name:   "null pointer",
			output: "java.lang.NullPointerException at OrderServiceImplTest.java:42",
			want:   domain.FailNullPointer,
		},
		{
			name:   "class cast",
			output: "java.lang.ClassCastException: Order cannot be cast to Invoice",
			want:   domain.FailClassCast,
		},
		{
			name:   "instancio",
			output: "org.instancio.exception.InstancioApiException: generation failed",
			want:   domain.FailInstancio,
		},
		{
			name:   "mapper interface instantiation",
			output: "Cannot instantiate the interface OrderMapper",
			want:   domain.FailInterfaceInstance,
		},
		{
			name:   "assertion mismatch",
			output: "org.opentest4j.AssertionFailedError: expected: <3> but was: <2>",
			want:   domain.FailAssertionMismatch,
		},
		{
			name:   "missing symbol",
			output: "[ERROR] /src/OrderServiceImplTest.java:[18,9] cannot find symbol",
			want:   domain.FailSymbolNotFound,
		},
		{
			name:   "uncategorized",
			output: "something inexplicable happened",
			want:   domain.FailUncategorized,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := Classify(tc.output)
			assert.Equal(t, tc.want, rec.Kind)
			assert.NotEmpty(t, rec.Message)
		})
	}
}

func TestClassifySpecificBeforeGeneric(t *testing.T) {
	// A Mockito stubbing problem whose stack trace also mentions a bare
	// exception must classify as the specific kind.
	output := `org.mockito.exceptions.misusing.PotentialStubbingProblem: strict stubbing argument mismatch
	caused by: java.lang.IllegalStateException: boo`
	rec := Classify(output)
	assert.Equal(t, domain.FailPotentialStubbing, rec.Kind)
}

func TestClassifyExtractsStackLine(t *testing.T) {
	output := `java.lang.NullPointerException
	at de.example.order.OrderServiceImplTest.java:57`
	rec := Classify(output)
	assert.Equal(t, 57, rec.Line)
}

func TestClassifyExtractsCompileLine(t *testing.T) {
	output := "[ERROR] /src/test/java/de/example/OrderServiceImplTest.java:[23,14] ';' expected"
	rec := Classify(output)
	assert.Equal(t, 23, rec.Line)
	assert.Contains(t, rec.Message, "';' expected")
}

func TestClassifyMessageIsBounded(t *testing.T) {
	output := "NullPointerException " + strings.Repeat("x", 2000)
	rec := Classify(output)
	assert.LessOrEqual(t, len(rec.Message), messageExcerptLimit)
}

func TestClassifyFallbackUsesFailureBlock(t *testing.T) {
	output := `Results:

Failures:
  1) shouldPlaceOrder something went sideways

Tests run: 3`
	rec := Classify(output)
	assert.Equal(t, domain.FailUncategorized, rec.Kind)
	assert.Contains(t, rec.Message, "shouldPlaceOrder")
}

func TestClassifyIsDeterministic(t *testing.T) {
	output := "java.lang.IllegalArgumentException: bad id at FooTest.java:9"
	first := Classify(output)
	second := Classify(output)
	assert.Equal(t, first, second)
}
