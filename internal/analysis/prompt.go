package analysis

import "fmt"

// Input caps keep the prompt inside the upstream's context and cost
// limits. Truncation is a raw rune-count prefix, not word-aware,
// matching the cache fingerprint semantics: the same inputs always
// build the same prompt.
const (
	maxJDRunes     = 1000
	maxResumeRunes = 3000
)

const promptTemplate = `You are a senior technical interviewer and resume analyst. Compare the candidate's resume against the job description below and produce a deep match analysis.

Job description:
%s

Candidate resume:
%s

Follow these steps:
1. Keyword extraction: pick 3-5 core technical keywords from the job description.
2. Information extraction: pull the candidate's basic info from the resume. Use the literal string "not mentioned" for anything absent.
3. Weighted scoring: score strictly with these weights and compute the total (0-100):
   - Skill match (40%%): coverage and depth of the core keywords.
   - Experience match (30%%): years of experience and project complexity versus the JD.
   - Education (20%%): degree and field of study.
   - General quality (10%%): stability, clarity of writing.
   Every sub-score and the total are integers on a 0-100 scale.

Output strict JSON only, with no markdown code fences and no prose outside the object:
{
  "basic_info": {
    "name": "",
    "email": "",
    "phone": "",
    "address": "",
    "education": "",
    "years_of_experience": "",
    "job_intention": ""
  },
  "jd_analysis": {
    "keywords": ["", "", ""]
  },
  "education_background": ["period - school - major"],
  "match_score": 0,
  "score_breakdown": {
    "skill_score": 0,
    "experience_score": 0,
    "education_score": 0,
    "general_score": 0
  },
  "summary": "candidate profile in under 100 words",
  "match_analysis": "detailed report:\n1. Core strengths: ...\n2. Gap analysis: ...\n3. Recommendation: ..."
}`

// buildPrompt renders the structured-output instruction for one
// (resume, job description) pair.
func buildPrompt(resumeText, jdText string) string {
	return fmt.Sprintf(promptTemplate,
		truncateRunes(jdText, maxJDRunes),
		truncateRunes(resumeText, maxResumeRunes),
	)
}

// truncateRunes returns the first n runes of s. Slicing runes rather
// than bytes keeps multi-byte text intact at the cut point.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
