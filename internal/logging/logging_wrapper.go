package logging

import (
	"context"

	"github.com/sirupsen/logrus"
)

// WrapAction logs the start of an action and its outcome together with the
// data and timings collected in LogData.
func WrapAction(
	loggingName string,
	log *logrus.Logger,
	action func(context.Context, *LogData) error,
) func(context.Context) error {
	return func(ctx context.Context) error {
		logData := NewLogData(log)
		log.Debugf("Action.%v.Start", loggingName)

		endTimer := logData.AddTiming("duration")
		err := action(ctx, logData)
		endTimer()
		if err != nil {
			logData.Log().WithError(err).Errorf("Action.%v.Error", loggingName)
			return err
		}

		logData.Log().Infof("Action.%v.Complete", loggingName)
		return nil
	}
}
