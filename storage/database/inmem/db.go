// Package inmemdb provides in-memory repositories, used in tests and as a
// database-free dev mode.
package inmemdb

import (
	"sync"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/notice"
	"github.com/trezcool/darasa/core/student"
)

type DB struct {
	mutex       sync.RWMutex
	students    map[string]*student.Student
	assignments map[string]*assignment.Assignment
	submissions map[string]*assignment.Submission
	notices     map[string]*notice.Notice
}

func Open() *DB {
	return &DB{
		students:    make(map[string]*student.Student),
		assignments: make(map[string]*assignment.Assignment),
		submissions: make(map[string]*assignment.Submission),
		notices:     make(map[string]*notice.Notice),
	}
}
