// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Severity grades a Diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Stage names the pipeline step that produced a Diagnostic.
type Stage string

const (
	StageExtract Stage = "extract"
	StageMedia   Stage = "media"
	StageDeck    Stage = "deck"
	StageCard    Stage = "card"
	StageJournal Stage = "journal"
)

// Diagnostic is a non-fatal problem recorded during a run. Pipeline steps
// return diagnostics alongside their results instead of aborting.
type Diagnostic struct {
	Severity Severity
	Stage    Stage

	// Source is the note file being processed, if any.
	Source string

	// Subject is the reference, deck name or card preview involved.
	Subject string

	Err error
}

// Warn builds a warning-level Diagnostic.
func Warn(stage Stage, source, subject string, err error) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Stage: stage, Source: source, Subject: subject, Err: err}
}

// Fail builds an error-level Diagnostic.
func Fail(stage Stage, source, subject string, err error) Diagnostic {
	return Diagnostic{Severity: SeverityError, Stage: stage, Source: source, Subject: subject, Err: err}
}

func (d Diagnostic) String() string {
	msg := "<nil>"
	if d.Err != nil {
		msg = d.Err.Error()
	}
	if d.Subject == "" {
		return fmt.Sprintf("%s [%s] %s", d.Severity, d.Stage, msg)
	}
	return fmt.Sprintf("%s [%s] %s: %s", d.Severity, d.Stage, d.Subject, msg)
}

// Diagnostics is an ordered collection with severity helpers.
type Diagnostics []Diagnostic

// Count returns the number of diagnostics with the given severity.
func (ds Diagnostics) Count(s Severity) int {
	n := 0
	for _, d := range ds {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// ByStage returns the diagnostics produced by stage.
func (ds Diagnostics) ByStage(stage Stage) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Stage == stage {
			out = append(out, d)
		}
	}
	return out
}
