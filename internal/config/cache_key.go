package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key for a student's login session
func (r *CacheKeyStruct) StudentSessionKey(studentID int64) string {
	return fmt.Sprintf("login:%d", studentID)
}

// ExamStatisticsKey returns the cache key for an offering's computed statistics
func (r *CacheKeyStruct) ExamStatisticsKey(year int, exam string, round int) string {
	return fmt.Sprintf("predict:%d:%s:%d:statistics", year, exam, round)
}

// ExamParticipantsKey returns the cache key for an offering's participant counts
func (r *CacheKeyStruct) ExamParticipantsKey(year int, exam string, round int) string {
	return fmt.Sprintf("predict:%d:%s:%d:participants", year, exam, round)
}

// ExamAnswerOfficialKey returns the cache key for an offering's official answer key
func (r *CacheKeyStruct) ExamAnswerOfficialKey(year int, exam string, round int) string {
	return fmt.Sprintf("predict:%d:%s:%d:answer_official", year, exam, round)
}

// RecomputeProgressChannel returns the Redis PubSub channel carrying recompute
// progress events for one exam offering
func (r *CacheKeyStruct) RecomputeProgressChannel(year int, exam string, round int) string {
	return fmt.Sprintf("predict:%d:%s:%d:progress", year, exam, round)
}

var CacheKey = NewCacheKeyStruct()
