package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestObservedLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)

	logger.Debugw("goal reached", "cost", 12.5, "lane", 3)
	logger.Infof("planned %d trajectories", 5)
	logger.Warn("no candidate")

	test.That(t, logs.Len(), test.ShouldEqual, 3)
	entry := logs.FilterMessage("goal reached").All()
	test.That(t, entry, test.ShouldHaveLength, 1)
	fields := entry[0].ContextMap()
	test.That(t, fields["cost"], test.ShouldEqual, 12.5)
	test.That(t, fields["lane"], test.ShouldEqual, int64(3))
	test.That(t, logs.FilterMessage("planned 5 trajectories").Len(), test.ShouldEqual, 1)
}

func TestUnpairedKey(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Errorw("odd", "dangling")
	fields := logs.All()[0].ContextMap()
	test.That(t, fields["dangling"], test.ShouldEqual, "unpaired log key")
}

func TestLevelFiltering(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.SetLevel(WARN)
	test.That(t, logger.GetLevel(), test.ShouldEqual, WARN)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept")
	test.That(t, logs.Len(), test.ShouldEqual, 2)

	ctx := EnableDebugMode(context.Background(), "")
	test.That(t, IsDebugMode(ctx), test.ShouldBeTrue)
	test.That(t, GetName(ctx), test.ShouldHaveLength, 6)
	test.That(t, IsDebugMode(context.Background()), test.ShouldBeFalse)

	logger.CDebugf(ctx, "tick %d", 1)
	logger.CDebugf(context.Background(), "tick %d", 2)
	test.That(t, logs.FilterMessage("tick 1").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("tick 2").Len(), test.ShouldEqual, 0)
}

func TestSublogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	sub := logger.Sublogger("rollout").Sublogger("debug")
	sub.Info("hello")
	test.That(t, logs.All()[0].LoggerName, test.ShouldEqual, "rollout.debug")
	test.That(t, logger.Sync(), test.ShouldBeNil)
}

func TestWriterAppender(t *testing.T) {
	var buf bytes.Buffer
	logger := NewBlankLogger("planner")
	logger.AddAppender(NewWriterAppender(&buf))
	logger.Infow("tick", "trajectories", 5)

	line := strings.TrimSuffix(buf.String(), "\n")
	parts := strings.Split(line, "\t")
	test.That(t, len(parts), test.ShouldBeGreaterThanOrEqualTo, 5)
	test.That(t, parts[1], test.ShouldEqual, "INFO")
	test.That(t, parts[2], test.ShouldEqual, "planner")
	test.That(t, strings.HasPrefix(parts[3], "logging/logger_test.go:"), test.ShouldBeTrue)
	test.That(t, parts[4], test.ShouldEqual, "tick")
	test.That(t, line, test.ShouldContainSubstring, `"trajectories"`)
}

func TestLevelFromString(t *testing.T) {
	for _, c := range []struct {
		in  string
		out Level
	}{{"debug", DEBUG}, {"INFO", INFO}, {"Warn", WARN}, {"error", ERROR}} {
		level, err := LevelFromString(c.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, c.out)
	}
	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)

	var level Level
	test.That(t, level.UnmarshalJSON([]byte(`"warn"`)), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, WARN)
	out, err := ERROR.MarshalJSON()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, `"Error"`)
}
