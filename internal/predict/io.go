package predict

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Write emits the prediction file: '#' metadata comments followed by one
// "freq_hz theta_re theta_im" row per channel. This is the interchange
// format between frion-predict and frion-correct.
func (p *Prediction) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# frion prediction: time-integrated ionospheric modulation")
	if !p.Start.IsZero() {
		fmt.Fprintf(bw, "# start: %s\n", p.Start.UTC().Format(time.RFC3339))
		fmt.Fprintf(bw, "# end: %s\n", p.End.UTC().Format(time.RFC3339))
	}
	if p.RA != 0 || p.Dec != 0 {
		fmt.Fprintf(bw, "# ra_deg: %.6f dec_deg: %.6f\n", p.RA, p.Dec)
	}
	fmt.Fprintln(bw, "# columns: freq_hz theta_re theta_im")
	for i, f := range p.FreqsHz {
		fmt.Fprintf(bw, "%.6f %.10e %.10e\n", f, real(p.Theta[i]), imag(p.Theta[i]))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("predict: write prediction: %w", err)
	}
	return nil
}

// WriteFile writes the prediction to path. Unless overwrite is set, an
// existing file is an error.
func (p *Prediction) WriteFile(path string, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("predict: create %s: %w", path, err)
	}
	if err := p.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read parses a prediction file. Comments and blank lines are skipped;
// every data row must carry exactly three numeric columns.
func Read(r io.Reader) (*Prediction, error) {
	p := &Prediction{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 3 {
			return nil, fmt.Errorf("predict: line %d: want 3 columns, got %d", line, len(fields))
		}
		vals := make([]float64, 3)
		for i, fs := range fields {
			v, err := strconv.ParseFloat(fs, 64)
			if err != nil {
				return nil, fmt.Errorf("predict: line %d: bad value %q: %w", line, fs, err)
			}
			vals[i] = v
		}
		p.FreqsHz = append(p.FreqsHz, vals[0])
		p.Theta = append(p.Theta, complex(vals[1], vals[2]))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("predict: read prediction: %w", err)
	}
	if len(p.FreqsHz) == 0 {
		return nil, fmt.Errorf("predict: prediction file contains no channels")
	}
	return p, nil
}

// ReadFile parses the prediction file at path.
func ReadFile(path string) (*Prediction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("predict: open %s: %w", path, err)
	}
	defer f.Close()
	p, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("predict: %s: %w", path, err)
	}
	return p, nil
}
