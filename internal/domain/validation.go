package domain

import (
	"strings"
	"time"
)

// FailurePhase tags which stage of the validation loop produced a failure.
type FailurePhase string

const (
	PhasePersist  FailurePhase = "persist"
	PhaseCompile  FailurePhase = "compile"
	PhaseExecute  FailurePhase = "execute"
	PhaseTimeout  FailurePhase = "timeout"
	PhaseInternal FailurePhase = "internal"
)

// FailureKind is a closed classification of compiler/runner output.
type FailureKind string

const (
	// Mockito misuse, ordered most-specific first in the classifier.
	FailDoNothingNonVoid    FailureKind = "doNothing_on_non_void"
	FailNotAMock            FailureKind = "not_a_mock"
	FailPotentialStubbing   FailureKind = "potential_stubbing_problem"
	FailUnnecessaryStubbing FailureKind = "unnecessary_stubbing"
	FailInvalidMatchers     FailureKind = "invalid_matchers"
	FailWrongReturnType     FailureKind = "wrong_return_type"
	FailUnfinishedStubbing  FailureKind = "unfinished_stubbing"

	// Generic runtime failures.
	FailNullPointer     FailureKind = "null_pointer"
	FailNoSuchMethod    FailureKind = "no_such_method"
	FailNoSuchField     FailureKind = "no_such_field"
	FailClassCast       FailureKind = "class_cast"
	FailIllegalArgument FailureKind = "illegal_argument"
	FailIllegalState    FailureKind = "illegal_state"

	// Test-data and mapping library failures.
	FailInstancio         FailureKind = "instancio_error"
	FailInstancioMethod   FailureKind = "instancio_method_error"
	FailInterfaceInstance FailureKind = "interface_instantiation"
	FailMapperNotFound    FailureKind = "mapper_not_generated"

	// Assertions.
	FailAssertionMismatch FailureKind = "assertion_mismatch"
	FailAssertion         FailureKind = "assertion_error"

	// Compile-level symptoms.
	FailSymbolNotFound    FailureKind = "symbol_not_found"
	FailIncompatibleTypes FailureKind = "incompatible_types"
	FailCompilation       FailureKind = "compilation"

	// Loop-level outcomes.
	FailTimeout       FailureKind = "timeout"
	FailInternal      FailureKind = "internal"
	FailPersistence   FailureKind = "persistence"
	FailUncategorized FailureKind = "uncategorized"
)

// FailureRecord is the classified shape of one compile or run failure.
// Derived purely from raw textual output and never mutated afterwards.
type FailureRecord struct {
	Phase   FailurePhase `json:"phase"`
	Kind    FailureKind  `json:"kind"`
	Message string       `json:"message"`
	Line    int          `json:"line,omitempty"`
}

// ValidationAttempt records one persist-compile-execute cycle.
type ValidationAttempt struct {
	Index   int            `json:"index"`
	Phase   FailurePhase   `json:"phase"`
	Success bool           `json:"success"`
	Failure *FailureRecord `json:"failure,omitempty"`
}

// TestTarget identifies the unit a candidate test exercises.
type TestTarget struct {
	Class   string `json:"class"`
	Package string `json:"package"`
}

// TestClass derives the conventional test class name. Integration
// tests drop the Impl suffix. The same convention drives both the
// persisted file path and Maven's -Dtest selector, so the two always
// agree.
func (t TestTarget) TestClass(integration bool) string {
	if integration {
		return strings.Replace(t.Class, "Impl", "", 1) + "IntegrationTest"
	}
	return t.Class + "Test"
}

// Run records one generation run for history. Attempts carry the
// validation trail when the run was validated.
type Run struct {
	ID        string              `json:"id"`
	SessionID string              `json:"session_id,omitempty"`
	Target    TestTarget          `json:"target"`
	TestType  string              `json:"test_type"`
	Validated bool                `json:"validated"`
	Success   bool                `json:"success"`
	Attempts  []ValidationAttempt `json:"attempts,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}
