package model_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/jobmatch/internal/domain/model"
)

func TestError_IsMatchesByKind(t *testing.T) {
	cause := errors.New("remote said no")
	err := fmt.Errorf("evaluate: %w", model.Wrap(model.ErrEvaluationFailed, "quota exceeded", cause))

	assert.ErrorIs(t, err, model.ErrEvaluationFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, model.ErrInsufficientCredits)
	assert.Equal(t, model.KindEvaluationFailed, model.KindOf(err))
	assert.Equal(t, "quota exceeded", model.Wrap(model.ErrEvaluationFailed, "quota exceeded", nil).Error())
}

func TestWrap_KeepsDefaultMessage(t *testing.T) {
	err := model.Wrap(model.ErrStorageFailure, "", errors.New("disk full"))

	assert.Equal(t, model.ErrStorageFailure.Message, err.Error())
	assert.Equal(t, model.ErrorKind(""), model.KindOf(errors.New("plain")))
}
