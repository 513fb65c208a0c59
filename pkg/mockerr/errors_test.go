/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors_test.go
Description: Tests for the error taxonomy
*/

package mockerr_test

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/stretchr/testify/assert"
)

// TestErrorMatching tests that kind and cause both survive wrapping
func TestErrorMatching(t *testing.T) {
	err := mockerr.Wrap(mockerr.ErrSchemaAnalysis, "analyze", "policy", io.ErrUnexpectedEOF)
	wrapped := fmt.Errorf("load corpus: %w", err)

	assert.ErrorIs(t, wrapped, mockerr.ErrSchemaAnalysis)
	assert.ErrorIs(t, wrapped, io.ErrUnexpectedEOF)
	assert.NotErrorIs(t, wrapped, mockerr.ErrUnknownType)
	assert.Equal(t, mockerr.ErrSchemaAnalysis, mockerr.KindOf(wrapped))

	var typed *mockerr.Error
	assert.True(t, errors.As(wrapped, &typed))
	assert.Equal(t, "policy", typed.Subject)

	assert.Nil(t, mockerr.KindOf(io.EOF))
}

// TestErrorMessage tests message rendering with details
func TestErrorMessage(t *testing.T) {
	err := mockerr.New(mockerr.ErrInvalidRequest, "generate", "").With("count", 0).With("max", 1000)
	assert.Equal(t, "generate: invalid request (count=0, max=1000)", err.Error())

	assert.Equal(t, "error", (&mockerr.Error{}).Error())
}

// TestUnknownType tests that lookup misses list the available types in order
func TestUnknownType(t *testing.T) {
	err := mockerr.UnknownType("boat", []string{"trip", "policy"})
	assert.ErrorIs(t, err, mockerr.ErrUnknownType)
	assert.Equal(t, `create: unknown logical type "boat" (available=policy, trip)`, err.Error())

	bare := mockerr.UnknownType("boat", nil)
	assert.Empty(t, bare.Details)
}
