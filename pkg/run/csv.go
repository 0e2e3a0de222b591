package run

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// EndSentinel terminates a CSV stream. The plotting side reads rows until it
// sees this line, so every encoded run ends with it.
const EndSentinel = "End"

// EncodeCSV writes the run's samples as "<elapsed-ms>,<volts>" rows followed
// by the End sentinel line.
func EncodeCSV(w io.Writer, r *Run) error {
	bw := bufio.NewWriter(w)
	for _, s := range r.Samples() {
		ms := float64(s.Elapsed) / float64(time.Millisecond)
		if _, err := fmt.Fprintf(bw, "%s,%s\n",
			strconv.FormatFloat(ms, 'f', -1, 64),
			strconv.FormatFloat(s.Volts, 'g', -1, 64),
		); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(bw, EndSentinel); err != nil {
		return err
	}
	return bw.Flush()
}

// DecodeCSV reads "<elapsed-ms>,<volts>" rows until the End sentinel or EOF.
//
// Lines that do not parse are skipped: the serial stream a capture travels
// over carries boot banners and prompt noise around the data, and the decoder
// tolerates it the same way the plotting side does. Raw counts are not part
// of the wire format and are left zero.
func DecodeCSV(r io.Reader) ([]Sample, error) {
	var samples []Sample

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == EndSentinel {
			break
		}

		cols := strings.SplitN(line, ",", 2)
		if len(cols) < 2 {
			continue
		}
		ms, err := strconv.ParseFloat(strings.TrimSpace(cols[0]), 64)
		if err != nil {
			continue
		}
		volts, err := strconv.ParseFloat(strings.TrimSpace(cols[1]), 64)
		if err != nil {
			continue
		}

		samples = append(samples, Sample{
			Elapsed: time.Duration(ms * float64(time.Millisecond)),
			Volts:   volts,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}
