package model

// VerdictNotification is the event handed to the notification queue when a
// submission reaches a terminal verdict.
type VerdictNotification struct {
	Recipient   string `json:"recipient"`
	ProblemName string `json:"problem_name"`
	StatusCode  int    `json:"status_code"`
	StatusName  string `json:"status_name"`
}
