// Package analysis implements the resume/JD compatibility pipeline:
// fingerprint the upload, consult the result cache, and on a miss
// extract the resume text, request a structured assessment from the
// model, normalize its output and cache the report.
package analysis

// BasicInfo is the candidate profile the model extracts from the
// resume. Absent fields carry the literal placeholder "not mentioned".
type BasicInfo struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Address           string `json:"address"`
	Education         string `json:"education"`
	YearsOfExperience string `json:"years_of_experience"`
	JobIntention      string `json:"job_intention"`
}

// JDAnalysis holds the 3-5 core keywords extracted from the job
// description.
type JDAnalysis struct {
	Keywords []string `json:"keywords"`
}

// ScoreBreakdown is the weighted sub-scores behind MatchScore, each on
// a 0-100 scale: skill 40%, experience 30%, education 20%, general 10%.
type ScoreBreakdown struct {
	SkillScore      int `json:"skill_score"`
	ExperienceScore int `json:"experience_score"`
	EducationScore  int `json:"education_score"`
	GeneralScore    int `json:"general_score"`
}

// Report is the structured compatibility assessment returned to the
// caller and stored in the cache. Field names are a fixed external
// contract.
type Report struct {
	BasicInfo           BasicInfo      `json:"basic_info"`
	JDAnalysis          JDAnalysis     `json:"jd_analysis"`
	EducationBackground []string       `json:"education_background"`
	MatchScore          int            `json:"match_score"`
	ScoreBreakdown      ScoreBreakdown `json:"score_breakdown"`
	Summary             string         `json:"summary"`
	MatchAnalysis       string         `json:"match_analysis"`

	// Cached is set only on responses served from the cache. It is
	// never persisted: reports are marshaled for storage before the
	// flag is set, so omitempty keeps it out of the stored value.
	Cached bool `json:"_is_cached,omitempty"`
}
