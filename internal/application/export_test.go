package application

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

func (s *ResumeService) SetClock(now func() time.Time)             { s.now = now }
func (s *ResumeService) SetTimer(t backoff.Timer)                  { s.timer = t }
func (s *ResumeService) SetScheduler(f func(time.Duration, func())) { s.schedule = f }

func (s *EvaluationService) SetClock(now func() time.Time) { s.now = now }
func (s *EvaluationService) SetTimer(t backoff.Timer)      { s.timer = t }

func (s *AuthService) SetSleep(f func(context.Context, time.Duration) error) { s.sleep = f }
func (s *AuthService) SetTokenSource(f func() string)                       { s.newToken = f }
