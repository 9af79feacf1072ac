package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"skyeserver/internal/admin"
	"skyeserver/internal/client"
)

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, confirm(strings.NewReader("y\n"), &out, "Delete x?"))
	assert.Equal(t, "Delete x? [y/N] ", out.String())
	assert.True(t, confirm(strings.NewReader(" YES \n"), &out, "?"))
	assert.False(t, confirm(strings.NewReader("\n"), &out, "?"))
	assert.False(t, confirm(strings.NewReader(""), &out, "?"))
}

func TestProgressPrinter_PrintsQuarters(t *testing.T) {
	var out bytes.Buffer
	p := newProgressPrinter(&out)
	for _, f := range []float64{0, 0.1, 0.2, 0.3, 0.5, 0.55, 1, 1} {
		p.report("a.mp4", f)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "0%")
	assert.Contains(t, lines[3], "100%")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Please provide title.", describe(&admin.ValidationError{Message: "Please provide title."}))

	err := fmt.Errorf("Delete failed: %w", &client.APIError{Status: 500, Code: "INTERNAL_ERROR", Message: "disk full"})
	assert.Equal(t, "Delete failed: disk full", describe(err))

	assert.Equal(t, "boom", describe(errors.New("boom")))
}
