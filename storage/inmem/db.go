package inmemdb

import (
	"sync"

	"vlogvalidator/core/submission"
)

type (
	DB struct {
		submissions *submissionTable
	}

	submissionTable struct {
		sync.RWMutex
		table map[string]*submission.Submission

		subscribers map[int]chan []submission.Submission
		nextSubID   int
	}
)

func Open() (*DB, error) {
	db := &DB{
		submissions: &submissionTable{
			table:       make(map[string]*submission.Submission),
			subscribers: make(map[int]chan []submission.Submission),
		},
	}
	return db, nil
}
