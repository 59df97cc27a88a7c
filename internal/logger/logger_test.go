package logger

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zapcore"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (suite *LoggerTestSuite) TestNewLogger() {
	l, err := NewLogger("debug")
	suite.Require().NoError(err)
	suite.NotNil(l.Logger)
	suite.True(l.Core().Enabled(zapcore.DebugLevel))
}

func (suite *LoggerTestSuite) TestUnknownLevelFallsBackToInfo() {
	l, err := NewLogger("loud")
	suite.Require().NoError(err)
	suite.False(l.Core().Enabled(zapcore.DebugLevel))
	suite.True(l.Core().Enabled(zapcore.InfoLevel))
}

func (suite *LoggerTestSuite) TestSyncNilLogger() {
	l := &Logger{Logger: nil}
	suite.NoError(l.Sync())
}

func (suite *LoggerTestSuite) TestNopAndNamed() {
	l := NewNop().Named("collector")
	suite.NotNil(l)
	l.Info("discarded")
}
