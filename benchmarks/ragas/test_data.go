// ABOUTME: Test scenario data structures for RAGAS benchmarks
// ABOUTME: Defines fixture documents, questions, and ground truth for each test

package ragas

import "github.com/harper/docqa/internal/models"

// TestScenario represents a complete RAGAS benchmark test
type TestScenario struct {
	ID          string
	Name        string
	Description string
	Documents   []FixtureDocument
	Question    string
	History     []models.ChatMessage
	// FilterTo restricts retrieval to the named fixture documents
	FilterTo    []string
	TopK        int
	GroundTruth GroundTruth
}

// FixtureDocument is ingested before the question is asked
type FixtureDocument struct {
	Filename string
	Content  string
}

// GroundTruth defines expected outcomes for RAGAS evaluation
type GroundTruth struct {
	ExpectedInResponse  []string // Strings that MUST appear in response
	ForbiddenInResponse []string // Strings that MUST NOT appear in response

	// Context retrieval expectations
	ExpectedContextItems []string // Passages that should be retrieved
	ExpectedSources      []string // Filenames the sources must come from
}

// TestResult represents the outcome of a benchmark test
type TestResult struct {
	TestID             string                 `json:"test_id"`
	TestName           string                 `json:"test_name"`
	FaithfulnessScore  float64                `json:"faithfulness_score"`
	ContextRecallScore float64                `json:"context_recall_score"`
	AttributionScore   float64                `json:"attribution_score"`
	OverallScore       float64                `json:"overall_score"`
	Status             string                 `json:"status"` // "PASS" or "FAIL"
	Details            map[string]interface{} `json:"details,omitempty"`
	ErrorMessage       string                 `json:"error_message,omitempty"`
}

const handbook = `Orbital Labs Employee Handbook

Section 1: Working Hours
Core hours are 10:00 to 15:00 in the employee's local timezone. Outside core hours people may work whenever suits them.

Section 2: Leave
Every employee receives 27 days of paid annual leave, plus public holidays. Unused leave of up to 5 days carries over into the next year.

Section 3: Equipment
New starters choose a laptop from the approved list during their first week. Equipment requests go to the IT desk at extension 4410.`

const releaseNotesV1 = `Helios Release Notes, version 1.8

The default request timeout is 30 seconds. Exports are written as CSV only. The maximum attachment size is 10 MB.`

const releaseNotesV2 = `Helios Release Notes, version 2.0

The default request timeout is now 45 seconds. Exports can be written as CSV or Parquet. The maximum attachment size is 25 MB.`

const fieldGuide = `A Field Guide to the Kestrel

The common kestrel hovers in place while hunting, facing into the wind. Its diet is mostly small mammals such as voles, supplemented with insects and small birds. A breeding pair usually raises four or five chicks each spring.`

// GetTestLookup returns the single-document fact lookup scenario
func GetTestLookup() TestScenario {
	return TestScenario{
		ID:          "lookup",
		Name:        "Single Document Fact Lookup",
		Description: "Tests that a specific value is retrieved and reported from one document",
		Documents: []FixtureDocument{
			{Filename: "handbook.txt", Content: handbook},
		},
		Question: "How many days of paid annual leave do employees get?",
		GroundTruth: GroundTruth{
			ExpectedInResponse:   []string{"27"},
			ExpectedContextItems: []string{"27 days of paid annual leave"},
			ExpectedSources:      []string{"handbook.txt"},
		},
	}
}

// GetTestFilter returns the document filter scenario with two conflicting versions
func GetTestFilter() TestScenario {
	return TestScenario{
		ID:          "filter",
		Name:        "Document Filter (Conflicting Versions)",
		Description: "Tests that a document filter keeps the other version out of context and answer",
		Documents: []FixtureDocument{
			{Filename: "helios-1.8.txt", Content: releaseNotesV1},
			{Filename: "helios-2.0.txt", Content: releaseNotesV2},
		},
		Question: "What is the default request timeout?",
		FilterTo: []string{"helios-2.0.txt"},
		GroundTruth: GroundTruth{
			ExpectedInResponse:   []string{"45"},
			ForbiddenInResponse:  []string{"30 seconds"},
			ExpectedContextItems: []string{"45 seconds"},
			ExpectedSources:      []string{"helios-2.0.txt"},
		},
	}
}

// GetTestFollowUp returns the conversation history scenario
func GetTestFollowUp() TestScenario {
	return TestScenario{
		ID:          "followup",
		Name:        "Follow-up Question With History",
		Description: "Tests that earlier turns resolve a question that names no subject",
		Documents: []FixtureDocument{
			{Filename: "kestrel.txt", Content: fieldGuide},
			{Filename: "handbook.txt", Content: handbook},
		},
		History: []models.ChatMessage{
			{Role: models.RoleUser, Content: "What does the kestrel do while hunting?"},
			{Role: models.RoleAssistant, Content: "It hovers in place facing into the wind."},
		},
		Question: "How many chicks does a kestrel breeding pair raise?",
		GroundTruth: GroundTruth{
			ExpectedInResponse:   []string{"four"},
			ExpectedContextItems: []string{"four or five chicks"},
			ExpectedSources:      []string{"kestrel.txt"},
		},
	}
}

// GetTestOutOfScope returns the unanswerable question scenario
func GetTestOutOfScope() TestScenario {
	return TestScenario{
		ID:          "outofscope",
		Name:        "Question Outside The Documents",
		Description: "Tests that the answer does not invent a value the documents never state",
		Documents: []FixtureDocument{
			{Filename: "handbook.txt", Content: handbook},
		},
		Question: "What is the company's parental leave policy in weeks?",
		GroundTruth: GroundTruth{
			ForbiddenInResponse: []string{"12 weeks", "16 weeks", "26 weeks"},
			ExpectedSources:     []string{"handbook.txt"},
		},
	}
}

// GetAllTests returns all RAGAS benchmark tests
func GetAllTests() []TestScenario {
	return []TestScenario{
		GetTestLookup(),
		GetTestFilter(),
		GetTestFollowUp(),
		GetTestOutOfScope(),
	}
}

// GetTest returns the scenario with the given ID
func GetTest(id string) (TestScenario, bool) {
	for _, scenario := range GetAllTests() {
		if scenario.ID == id {
			return scenario, true
		}
	}
	return TestScenario{}, false
}
