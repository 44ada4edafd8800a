// Package loadlog implements a per-dataset in-memory log buffer.
//
// Detailed lines are buffered while one CSV load is in progress.
// If the load fails the buffer is replayed followed by the final error,
// so the operator sees the whole story. If the load succeeds the buffer
// is dropped and a single summary line is written instead.
//
// Thread safety comes from a dedicated logger goroutine fed by a
// command channel; there are no mutexes.
package loadlog

import (
	"bytes"
	"log"
	"strings"
	"time"
)

type action int

const (
	actBegin action = iota
	actAppend
	actSuccess
	actFlushErr
)

type cmd struct {
	act     action
	dataset string
	message string    // for Append
	summary string    // for Success
	err     error     // for FlushError
	when    time.Time // kept for ordering if buffers are ever merged
}

// Buffered so bursts of per-row detail do not stall the loader.
var ch = make(chan cmd, 128)

// Begin starts buffering detail lines for the named dataset.
func Begin(dataset string) { ch <- cmd{act: actBegin, dataset: dataset, when: time.Now()} }

// Append adds one detail line to the dataset's buffer. Without a prior
// Begin the line is written immediately.
func Append(dataset, msg string) {
	ch <- cmd{act: actAppend, dataset: dataset, message: msg, when: time.Now()}
}

// Success drops the buffer and writes a single summary line.
func Success(dataset, summary string) {
	ch <- cmd{act: actSuccess, dataset: dataset, summary: summary, when: time.Now()}
}

// FlushError replays the buffered detail and then the final error.
func FlushError(dataset string, err error) {
	ch <- cmd{act: actFlushErr, dataset: dataset, err: err, when: time.Now()}
}

func init() { go runloop() }

func runloop() {
	buffers := make(map[string]*bytes.Buffer)

	for c := range ch {
		switch c.act {
		case actBegin:
			buffers[c.dataset] = &bytes.Buffer{}

		case actAppend:
			if b := buffers[c.dataset]; b != nil {
				_, _ = b.WriteString(c.message + "\n")
			} else {
				log.Print(c.message)
			}

		case actSuccess:
			log.Printf("[%s][load] ✔ %s", c.dataset, c.summary)
			delete(buffers, c.dataset)

		case actFlushErr:
			if b := buffers[c.dataset]; b != nil {
				lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
				for _, ln := range lines {
					if ln != "" {
						log.Print(ln)
					}
				}
				delete(buffers, c.dataset)
			}
			log.Printf("[%s][ERROR] %v", c.dataset, c.err)
		}
	}
}
