package model

import "time"

// Department is one recruiting track within an exam family. Students rank
// against their department subgroup in addition to the whole cohort.
type Department struct {
	ID        int64     `json:"id"`
	Exam      string    `json:"exam"`
	Unit      string    `json:"unit"`
	Name      string    `json:"name"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}
