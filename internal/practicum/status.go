package practicum

import "fmt"

// Review statuses known to the API.
const (
	StatusApproved  = "approved"
	StatusReviewing = "reviewing"
	StatusRejected  = "rejected"
)

var verdicts = map[string]string{
	StatusApproved:  "reviewed, no issues, approved",
	StatusReviewing: "taken up for review",
	StatusRejected:  "reviewed, reviewer has comments",
}

const statusMessage = `Review status changed for "%s": %s`

// Verdict returns the human-readable text for a status.
func Verdict(status string) (string, bool) {
	v, ok := verdicts[status]
	return v, ok
}

// ParseStatus turns a homework record into the notification text.
func ParseStatus(hw Homework) (string, error) {
	if problems := requiredProblems(hw); len(problems) > 0 {
		return "", &ValidationError{Problems: problems}
	}

	verdict, ok := Verdict(hw.Status)
	if !ok {
		return "", &UnknownStatusError{Status: hw.Status}
	}

	msg := fmt.Sprintf(statusMessage, hw.Name, verdict)
	if hw.Status == StatusRejected && hw.ReviewerComment != "" {
		msg += "\n\n" + hw.ReviewerComment
	}
	return msg, nil
}
