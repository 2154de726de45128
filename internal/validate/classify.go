// Package validate drives the bounded compile-run-repair loop for
// generated tests and classifies raw build output into a closed failure
// taxonomy.
package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joss/testsmith/internal/domain"
)

// messageExcerptLimit caps classified messages so failure records stay
// prompt-sized.
const messageExcerptLimit = 500

type failurePattern struct {
	re   *regexp.Regexp
	kind domain.FailureKind
}

// failurePatterns is checked in order, first match wins. Specific
// library failures come before the bare exception names they would
// otherwise be swallowed by.
var failurePatterns = []failurePattern{
	// Mockito misuse.
	{regexp.MustCompile(`(?i)MockitoException.*Only void methods can doNothing`), domain.FailDoNothingNonVoid},
	{regexp.MustCompile(`(?i)Only void methods can doNothing`), domain.FailDoNothingNonVoid},
	{regexp.MustCompile(`(?i)NotAMockException`), domain.FailNotAMock},
	{regexp.MustCompile(`(?i)PotentialStubbingProblem`), domain.FailPotentialStubbing},
	{regexp.MustCompile(`(?i)UnnecessaryStubbingException`), domain.FailUnnecessaryStubbing},
	{regexp.MustCompile(`(?i)InvalidUseOfMatchersException`), domain.FailInvalidMatchers},
	{regexp.MustCompile(`(?i)WrongTypeOfReturnValue`), domain.FailWrongReturnType},
	{regexp.MustCompile(`(?i)UnfinishedStubbingException`), domain.FailUnfinishedStubbing},

	// Common runtime exceptions.
	{regexp.MustCompile(`(?i)NullPointerException`), domain.FailNullPointer},
	{regexp.MustCompile(`(?i)NoSuchMethodError`), domain.FailNoSuchMethod},
	{regexp.MustCompile(`(?i)NoSuchFieldError`), domain.FailNoSuchField},
	{regexp.MustCompile(`(?i)ClassCastException`), domain.FailClassCast},
	{regexp.MustCompile(`(?i)IllegalArgumentException`), domain.FailIllegalArgument},
	{regexp.MustCompile(`(?i)IllegalStateException`), domain.FailIllegalState},

	// Test data generation (Instancio).
	{regexp.MustCompile(`(?i)InstancioApiException`), domain.FailInstancio},
	{regexp.MustCompile(`(?i)No candidates found for method call`), domain.FailInstancioMethod},

	// Mapping (MapStruct).
	{regexp.MustCompile(`(?i)Cannot instantiate.*interface`), domain.FailInterfaceInstance},
	{regexp.MustCompile(`(?i)Mappers\.getMapper.*returned null`), domain.FailMapperNotFound},

	// Assertions: the expected/actual form before the bare error.
	{regexp.MustCompile(`(?i)AssertionFailedError.*expected.*but was`), domain.FailAssertionMismatch},
	{regexp.MustCompile(`(?i)AssertionError`), domain.FailAssertion},

	// Compiler symptoms leaking into surefire output.
	{regexp.MustCompile(`(?i)cannot find symbol`), domain.FailSymbolNotFound},
	{regexp.MustCompile(`(?i)incompatible types`), domain.FailIncompatibleTypes},
}

var (
	stackLineRe    = regexp.MustCompile(`at .*Test\.(?:java|kt):(\d+)`)
	compileErrorRe = regexp.MustCompile(`\[ERROR\].*\.java:\[(\d+),\d+\]\s*(.*)`)
	errorLineRe    = regexp.MustCompile(`\[ERROR\]\s*(.+)`)
	failureBlockRe = regexp.MustCompile(`(?s)Failures:\s*\n\s*\d+\)\s*(.*?)(?:\n\n|$)`)
)

// Classify maps raw compiler/runner output to a failure record. Pure
// and deterministic: the same output always classifies the same way.
// The phase is filled in by the caller, which knows which stage ran.
func Classify(output string) domain.FailureRecord {
	rec := domain.FailureRecord{Kind: domain.FailUncategorized}

	for _, p := range failurePatterns {
		loc := p.re.FindStringIndex(output)
		if loc == nil {
			continue
		}
		rec.Kind = p.kind
		rec.Message = excerptLine(output, loc[0])
		break
	}

	if rec.Message == "" {
		rec.Message = fallbackMessage(output)
	}
	rec.Line = extractLine(output)
	return rec
}

// excerptLine returns the rest of the line starting at pos, capped.
func excerptLine(output string, pos int) string {
	rest := output[pos:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return truncate(strings.TrimSpace(rest), messageExcerptLimit)
}

// fallbackMessage extracts a best-effort excerpt when no pattern
// matched: a surefire failure block, then any [ERROR] line, then a
// generic note.
func fallbackMessage(output string) string {
	if m := failureBlockRe.FindStringSubmatch(output); m != nil {
		return truncate(strings.TrimSpace(m[1]), messageExcerptLimit)
	}
	if m := compileErrorRe.FindStringSubmatch(output); m != nil {
		return truncate(strings.TrimSpace(m[2]), messageExcerptLimit)
	}
	if m := errorLineRe.FindStringSubmatch(output); m != nil {
		return truncate(strings.TrimSpace(m[1]), messageExcerptLimit)
	}
	return "failure not categorized - check raw output"
}

// extractLine pulls a source line number from a test stack frame or a
// Maven compiler error marker.
func extractLine(output string) int {
	if m := stackLineRe.FindStringSubmatch(output); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	if m := compileErrorRe.FindStringSubmatch(output); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
