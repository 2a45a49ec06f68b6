// Package voice holds the speech pipeline boundary and the turn loop that
// drives model calls and tool execution for one user utterance.
//
// Speech engines are out of scope: the Recognizer and Speaker interfaces are
// the contract, and anything that can deliver final transcripts and accept
// utterances can sit behind them.
package voice

import "context"

// Transcript is one recognition result from the speech pipeline. Only final
// transcripts drive turns; partials may be surfaced for logging.
type Transcript struct {
	Text  string
	Final bool
}

// Recognizer delivers user speech as transcripts. The channel closes when
// the underlying pipeline ends.
type Recognizer interface {
	Transcripts() <-chan Transcript
	Close() error
}

// Speaker renders assistant text as speech.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Close() error
}
