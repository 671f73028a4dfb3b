// sim/metrics_export.go
package sim

import (
	"bufio"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// SaveQueueDepths writes the recorded queue depth sample series to fileName
// as CSV, one row per sample, for offline averaging and plotting.
func (s *Stats) SaveQueueDepths(fileName string) error {
	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0777)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", fileName, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			logrus.Errorf("Error closing file %s: %v", fileName, closeErr)
		}
	}()

	writer := bufio.NewWriter(file)

	if _, err := fmt.Fprintln(writer, "q0,q1,q2,q3"); err != nil {
		return fmt.Errorf("writing header to %s: %w", fileName, err)
	}
	for _, sample := range s.queueDepthSamples {
		if _, err := fmt.Fprintf(writer, "%d,%d,%d,%d\n", sample[0], sample[1], sample[2], sample[3]); err != nil {
			return fmt.Errorf("writing sample to %s: %w", fileName, err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", fileName, err)
	}

	logrus.Debugf("Successfully wrote %d queue depth samples to '%s'", len(s.queueDepthSamples), fileName)
	return nil
}
