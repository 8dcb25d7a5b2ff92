//go:build !gocv

package camera

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// openGoCV returns an error when the binary was built without OpenCV.
func openGoCV(cfg Config, logger *logrus.Logger) (Source, error) {
	return nil, fmt.Errorf("gocv backend not compiled in (build with -tags gocv)")
}
