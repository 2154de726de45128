// Package prompt assembles the LLM prompts for test generation,
// refinement, and repair. Prompts embed the scanned project context so
// the model imports real classes and uses real enum values instead of
// inventing them.
package prompt

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/joss/testsmith/internal/domain"
	"github.com/joss/testsmith/internal/scan"
)

const (
	// fence delimits code blocks in prompts. Kept as a constant so
	// templates can stay raw strings.
	fence = "```"

	// Section caps keep the system prompt inside the model context.
	maxSummaryChars      = 3000
	maxArchitectureChars = 2000
	maxMetadataChars     = 2000

	// maxRelatedFileChars caps each related source file in a prompt.
	maxRelatedFileChars = 3000

	// maxMockMethodsPerField caps listed methods per collaborator.
	maxMockMethodsPerField = 10

	// RepairTailLimit is how much raw build output the repair prompt
	// carries. The interesting part of a Maven failure is at the end.
	RepairTailLimit = 2000
)

// RelatedFile is a collaborator source carried into a prompt for context.
type RelatedFile struct {
	Path    string
	Content string
}

// Builder creates prompts from the scanned project context.
type Builder struct {
	gatherer *scan.Gatherer
}

// NewBuilder creates a prompt builder backed by the given gatherer.
func NewBuilder(g *scan.Gatherer) *Builder {
	return &Builder{gatherer: g}
}

const systemTemplate = `You are an expert Java developer specializing in Spring Boot testing.
You write high-quality, maintainable test code following modern best practices.

## PROJECT CONTEXT

### Project Structure (scanned at startup):
%[2]s

### Coding Conventions (from architecture.md):
%[3]s

### Entity Relationships & Sample Data (from metadata.txt):
%[4]s

## TESTING STANDARDS

Always follow these practices:
1. **JUnit 5** - Use @Test, @DisplayName, @BeforeEach
2. **Mockito** - Use @Mock, @InjectMocks, @ExtendWith(MockitoExtension.class)
3. **AssertJ** - Use assertThat() for fluent assertions
4. **BDD Style** - Structure tests with // Given, // When, // Then comments
5. **Instancio** - Use Instancio.create() for test data generation
6. **Descriptive Names** - Methods should start with "should" and describe expected behavior

## CRITICAL MOCKITO RULES (to avoid test failures)

1. ALWAYS use any() matchers for dynamic IDs:
   - WRONG: when(dao.findById("project-123")).thenReturn(entity);
   - CORRECT: when(dao.findById(any(String.class))).thenReturn(entity);
2. NEVER use doNothing() on non-void methods. doNothing() is ONLY for void methods.
   For non-void methods use when(mock.method()).thenReturn(value);
3. Use lenient() when stubs may not be called:
   lenient().when(service.method(any())).thenReturn(result);
4. verify() ONLY works on @Mock fields, never on entities created with Instancio.
   For entity state use assertThat() instead.
5. DO NOT use MockedStatic, mockito-inline is not available.
6. Always mock validators that throw exceptions:
   when(validator.findById(any())).thenReturn(Instancio.create(Entity.class));
7. Instancio.withSettings() is only valid on Instancio.of(), never standalone.

## OUTPUT FORMAT

When generating tests:
1. Output ONLY valid Java code - no markdown, no explanations
2. Triple-check all class names for typos before outputting
3. Cover happy paths and edge cases
4. For integration tests: use @SpringBootTest, MockMvc, and Testcontainers

## REQUIRED IMPORTS (use EXACTLY these spellings):
%[1]sjava
import org.junit.jupiter.api.Test;
import org.junit.jupiter.api.BeforeEach;
import org.junit.jupiter.api.DisplayName;
import org.junit.jupiter.api.extension.ExtendWith;
import org.mockito.Mock;
import org.mockito.InjectMocks;
import org.mockito.ArgumentCaptor;
import org.mockito.junit.jupiter.MockitoExtension;
import static org.mockito.Mockito.*;
import static org.mockito.ArgumentMatchers.*;
import static org.assertj.core.api.Assertions.*;
import org.instancio.Instancio;
import org.instancio.TypeToken;
import org.instancio.settings.Keys;
import org.instancio.settings.Settings;
import static org.instancio.Select.field;
%[1]s
`

// SystemPrompt builds the system prompt with project context folded in.
func (b *Builder) SystemPrompt() string {
	return fmt.Sprintf(systemTemplate,
		fence,
		truncate(b.gatherer.Summary(), maxSummaryChars),
		truncate(b.gatherer.ArchitectureSummary(), maxArchitectureChars),
		truncate(b.gatherer.MetadataSummary(), maxMetadataChars),
	)
}

const unitTemplate = `Generate a comprehensive unit test for the following Spring Boot service class.

## TARGET CLASS TO TEST:
%[1]sjava
%[2]s
%[1]s

## RELATED CLASSES (for context):
%[3]s
%[4]s
## CRITICAL REQUIREMENTS (follow exactly to avoid test failures):

### 0. NEVER RECREATE EXISTING PROJECT CLASSES
All entities, DTOs, enums, exceptions, and utilities EXIST in the project. IMPORT them,
do not define inner copies inside the test file. The test file contains ONLY the package
declaration, imports, the @ExtendWith annotation, and the test class itself.

### 1. Test Class Structure
- Create a test class named %[5]sTest
- Use @ExtendWith(MockitoExtension.class) on the class
- DO NOT use @Nested inner classes, put ALL test methods directly in the test class
- Include @DisplayName with clear descriptions (format: "methodName - should do X when Y")

### 2. Mappers
- When testing a Mapper itself, use Mappers.getMapper() and never stub it with when().
- When the class under test USES a mapper, declare it with @Mock and stub it normally.
- Mappers declared with @Mapper(uses = {...}) resolve dependent mappers automatically.

### 3. Instancio
Configure non-null nested objects when methods touch nested entity fields:
%[1]sjava
entity = Instancio.of(EntityClass.class)
    .withSettings(Settings.create()
        .set(Keys.SET_BACK_REFERENCES, false)
        .set(Keys.MAX_DEPTH, 4))
    .create();
%[1]s

### 4. Matchers and stubbing
- Use any() matchers everywhere, Instancio generates random IDs.
- Check return types before choosing stub syntax: doNothing() for void methods only,
  when().thenReturn() for everything else, lenient() when unsure.
- verify() only on @Mock fields.
- Mock ALL validators and services reached through private methods.

### 5. Standard Test Structure (BDD Style)
%[1]sjava
@Test
@DisplayName("should do X when Y")
void shouldDoXWhenY() {
    // Given
    when(dependency.method(any())).thenReturn(expectedValue);

    // When
    Result result = serviceUnderTest.methodToTest(input);

    // Then
    assertThat(result).isEqualTo(expectedValue);
    verify(dependency).method(any());
}
%[1]s

Generate the complete test class with all imports.`

// UnitTest builds the prompt for unit test generation. The mock
// requirements come from static call analysis so the model stubs
// exactly the collaborators the class really touches.
func (b *Builder) UnitTest(unit *domain.SourceUnit, related map[string]RelatedFile, mocks domain.MockRequirements) string {
	return fmt.Sprintf(unitTemplate,
		fence,
		unit.Source,
		formatRelated(related),
		b.mockSection(unit, mocks),
		unit.Name,
	)
}

func (b *Builder) mockSection(unit *domain.SourceUnit, mocks domain.MockRequirements) string {
	var b2 strings.Builder

	if len(mocks) > 0 {
		b2.WriteString("\n## METHODS THAT MUST BE MOCKED (extracted from method bodies):\n")
		fields := make([]string, 0, len(mocks))
		for field := range mocks {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			fmt.Fprintf(&b2, "\n### %s:\n", field)
			methods := mocks.Methods(field)
			if len(methods) > maxMockMethodsPerField {
				methods = methods[:maxMockMethodsPerField]
			}
			for _, m := range methods {
				fmt.Fprintf(&b2, "- %s.%s\n", field, m)
			}
		}
	}

	if enums := b.classEnums(unit.Source); enums != "" {
		b2.WriteString("\n## ENUMS USED IN THIS CLASS (use ONLY these values):\n")
		b2.WriteString(enums)
		b2.WriteString("\n")
	}
	return b2.String()
}

var enumUsageRe = regexp.MustCompile(`\b(\w+(?:Type|Status|State|Mode|Category|Enum))\b`)

// classEnums resolves enum-looking type names in the source against
// the project scan so the prompt can list their real constants.
func (b *Builder) classEnums(source string) string {
	ctx, err := b.gatherer.Context()
	if err != nil || len(ctx.Enums) == 0 {
		return ""
	}

	seen := map[string]bool{}
	var names []string
	for _, m := range enumUsageRe.FindAllStringSubmatch(source, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)

	var lines []string
	for _, name := range names {
		if info, ok := ctx.Enums[name]; ok && len(info.Values) > 0 {
			lines = append(lines, fmt.Sprintf("- %s: %s", name, strings.Join(info.Values, ", ")))
		}
	}
	return strings.Join(lines, "\n")
}

const integrationTemplate = `Generate a complete end-to-end integration test for the following Spring Boot class.

## TARGET CLASS TO TEST:
%[1]sjava
%[2]s
%[1]s

## RELATED CLASSES (for context):
%[3]s

## REQUIREMENTS:
1. Name the test class %[4]s
2. Use @SpringBootTest with MockMvc and Testcontainers
3. Use @Order annotations for execution sequence (find, create, update, delete)
4. Keep all tests in the main class, DO NOT use @Nested
5. Use MockMvcRequestBuilders with contentType(MediaType.APPLICATION_JSON)
6. Assert status codes with status().isOk(), status().isCreated(), status().isNoContent()
7. Load expected JSON bodies from classpath resources under src/test/resources/dtos/
8. Reuse entity IDs that already exist in the project's SQL migration scripts

Generate the complete test class with all imports.`

// IntegrationTest builds the prompt for end-to-end test generation.
func (b *Builder) IntegrationTest(unit *domain.SourceUnit, related map[string]RelatedFile) string {
	target := domain.TestTarget{Class: unit.Name, Package: unit.Package}
	return fmt.Sprintf(integrationTemplate,
		fence,
		unit.Source,
		formatRelated(related),
		target.TestClass(true),
	)
}

const refinementTemplate = `The user wants to modify the following test code.

## CURRENT TEST CODE:
%[1]sjava
%[2]s
%[1]s

## USER'S REQUESTED CHANGES:
%[3]s

## INSTRUCTIONS:
1. Apply the requested changes
2. Keep all existing good patterns
3. Maintain BDD style and naming conventions
4. Output the complete modified test class

Generate the updated test class.`

// Refinement builds the prompt for user-directed modification of a
// generated test.
func (b *Builder) Refinement(currentCode, feedback string) string {
	return fmt.Sprintf(refinementTemplate, fence, currentCode, feedback)
}

const repairTemplate = `The following test has a %[2]s error. Please fix it.

## ERROR TYPE: %[3]s
## ERROR MESSAGE: %[4]s
## ERROR LINE: %[5]s

## FULL ERROR OUTPUT (last %[6]d chars):
%[7]s

## CURRENT TEST CODE:
%[1]sjava
%[8]s
%[1]s

## FIX INSTRUCTIONS:
1. Identify the root cause of the error
2. Apply the minimal fix needed
3. Return ONLY the complete fixed Java test code
4. Do NOT include any markdown formatting or explanations
5. The response should start with 'package' and end with closing brace

Common fixes:
- NullPointerException: Add proper mocking with when().thenReturn()
- NotAMockException: Use @Mock annotation, not Mappers.getMapper() when stubbing
- doNothing on non-void: Use when().thenReturn() instead
- PotentialStubbingProblem: Use any() matchers or lenient()

Return the fixed test code:`

// Repair builds the prompt that asks the model to fix a failing test.
// Only the tail of the build output is included, Maven puts the
// relevant failure there.
func (b *Builder) Repair(code string, failure domain.FailureRecord, rawOutput string) string {
	line := "Unknown"
	if failure.Line > 0 {
		line = fmt.Sprintf("%d", failure.Line)
	}
	return fmt.Sprintf(repairTemplate,
		fence,
		failure.Phase,
		failure.Kind,
		failure.Message,
		line,
		RepairTailLimit,
		tail(rawOutput, RepairTailLimit),
		code,
	)
}

func formatRelated(related map[string]RelatedFile) string {
	if len(related) == 0 {
		return "No related files found."
	}
	keys := make([]string, 0, len(related))
	for k := range related {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		f := related[k]
		parts = append(parts, fmt.Sprintf("### %s (%s):\n%sjava\n%s\n%s",
			strings.ToUpper(k), f.Path, fence, truncate(f.Content, maxRelatedFileChars), fence))
	}
	return strings.Join(parts, "\n\n")
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

func tail(s string, max int) string {
	if len(s) > max {
		return s[len(s)-max:]
	}
	return s
}
