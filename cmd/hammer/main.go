// hammer fires concurrent submits at a running counter and compares the
// observed increase with the increments that were acknowledged. Against the
// read-modify-write DynamoDB store the difference is the number of lost
// updates.
package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	vegeta "github.com/tsenart/vegeta/v12/lib"

	"github.com/weegigs/steel-plate-go/support"
)

var myName = filepath.Base(os.Args[0])

var (
	optTarget   = flag.String("target", "http://"+support.DefaultAddr, "base url of the counter")
	optRate     = flag.Int("rate", 50, "submits per second")
	optDuration = flag.Duration("duration", 10*time.Second, "duration of the attack")
	optDelta    = flag.Uint("delta", 1, "increment sent with each submit (1-99)")
	optWorkers  = flag.Uint64("workers", vegeta.DefaultWorkers, "initial number of workers")
	optLogLevel = flag.String("log-level", "info", "debug|info|warn|error")
)

func main() {
	flag.Parse()

	if err := support.LoadEnv(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	logger, err := support.Logger(myName, *optLogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	if *optDelta < 1 || *optDelta > 99 {
		logger.Fatal().Uint("delta", *optDelta).Msg("--delta must be within 1-99")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	submit := strings.TrimRight(*optTarget, "/") + "/submit"

	before, err := readTotal(ctx, submit)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read initial total")
	}

	target := vegeta.Target{
		Method: http.MethodPost,
		URL:    submit,
		Body:   []byte(strconv.FormatUint(uint64(*optDelta), 10)),
	}
	attacker := vegeta.NewAttacker(vegeta.Workers(*optWorkers))
	rate := vegeta.Rate{Freq: *optRate, Per: time.Second}

	var metrics vegeta.Metrics
	results := attacker.Attack(vegeta.NewStaticTargeter(target), rate, *optDuration, myName)

	done := ctx.Done()
loop:
	for {
		select {
		case <-done:
			attacker.Stop()
			done = nil
		case res, ok := <-results:
			if !ok {
				break loop
			}
			metrics.Add(res)
		}
	}
	metrics.Close()

	after, err := readTotal(context.Background(), submit)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read final total")
	}

	acknowledged := uint64(metrics.StatusCodes["200"]) * uint64(*optDelta)
	observed := int64(after) - int64(before)

	logger.Info().
		Uint64("requests", metrics.Requests).
		Float64("success", metrics.Success).
		Dur("p99", metrics.Latencies.P99).
		Uint64("before", before).
		Uint64("after", after).
		Uint64("acknowledged", acknowledged).
		Int64("observed", observed).
		Int64("lost", int64(acknowledged)-observed).
		Msg("attack complete")
}

// readTotal asks for the current total with a body the server ignores.
func readTotal(ctx context.Context, submit string) (uint64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, submit, bytes.NewReader([]byte("0")))
	if err != nil {
		return 0, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}

	if resp.StatusCode != http.StatusOK {
		return 0, errors.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var snapshot struct {
		Total uint64 `json:"total"`
	}
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return 0, errors.Wrap(err, "failed to decode total")
	}

	return snapshot.Total, nil
}
