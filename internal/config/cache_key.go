package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// LearnerSessionKey returns the cache key for a learner's login session
func (r *CacheKeyStruct) LearnerSessionKey(learnerID int) string {
	return fmt.Sprintf("login:%d", learnerID)
}

// ExamSessionStartKey returns the cache key for a learner's exam session start time
func (r *CacheKeyStruct) ExamSessionStartKey(examID string, learnerID int) string {
	return fmt.Sprintf("learner:%d:exam:%s:session_start", learnerID, examID)
}

// ExamPaperKey returns the cache key for an exam's learner-facing paper
func (r *CacheKeyStruct) ExamPaperKey(examID string) string {
	return fmt.Sprintf("exam:%s:paper", examID)
}

// ExamDurationKey returns the cache key for an exam's duration
func (r *CacheKeyStruct) ExamDurationKey(examID string) string {
	return fmt.Sprintf("exam:%s:duration", examID)
}

// ExamGradingKey returns the cache key for an exam's grading key
func (r *CacheKeyStruct) ExamGradingKey(examID string) string {
	return fmt.Sprintf("exam:%s:key", examID)
}

var CacheKey = NewCacheKeyStruct()
