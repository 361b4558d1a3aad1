package models

import "encoding/json"

type ExamStatus string

const (
	ExamStatusReady        ExamStatus = "ready"
	ExamStatusAllCompleted ExamStatus = "all_completed"
)

// ExamAssembly is the outcome of assembling an exam: either one instance per part,
// or the exhausted status.
type ExamAssembly struct {
	ExamType ExamType
	Status   ExamStatus
	Parts    []ContentInstance
	// ExhaustedPart is the part number that triggered exhaustion.
	ExhaustedPart int
}

func (a *ExamAssembly) Exhausted() bool {
	return a.Status == ExamStatusAllCompleted
}

// StatData summarizes one exam type on the dashboard.
type StatData struct {
	AverageScore   int `json:"averageScore"`
	CompletedExams int `json:"completedExams"`
	TotalExams     int `json:"totalExams"`
}

// TrendPoint is one attempt on the performance chart.
type TrendPoint struct {
	Date      string   `json:"date"`
	Score     int      `json:"score"`
	ExamType  ExamType `json:"examType"`
	Timestamp string   `json:"timestamp"`
}

// SkillScore is the correctness percentage for one part.
type SkillScore struct {
	Part       string `json:"part"`
	PartNumber int    `json:"partNumber"`
	Score      int    `json:"score"`
}

type SkillBreakdown struct {
	Listening []SkillScore `json:"listening"`
	Reading   []SkillScore `json:"reading"`
}

type DashboardStats struct {
	Listening        StatData       `json:"listening"`
	Reading          StatData       `json:"reading"`
	PerformanceTrend []TrendPoint   `json:"performanceTrend"`
	SkillBreakdown   SkillBreakdown `json:"skillBreakdown"`
}

// HistoryItem is one row of the exam history listing.
type HistoryItem struct {
	Timestamp          string   `json:"timestamp"`
	ExamType           ExamType `json:"examType"`
	TotalScore         int      `json:"totalScore"`
	TotalQuestions     int      `json:"totalQuestions"`
	TimeTakenInSeconds *int     `json:"timeTakenInSeconds,omitempty"`
	Date               string   `json:"date"`
}

// FullExamResult is a past attempt rebuilt from history and the content catalog.
type FullExamResult struct {
	Score          int                        `json:"score"`
	TotalQuestions int                        `json:"totalQuestions"`
	TimeTaken      *int                       `json:"timeTaken"`
	ExamParts      []ContentInstance          `json:"examParts"`
	AllUserAnswers map[string]json.RawMessage `json:"allUserAnswers"`
}
