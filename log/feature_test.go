package log_test

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/miruken-go/reflected"
	"github.com/miruken-go/reflected/internal/hostapp"
	"github.com/miruken-go/reflected/log"
	"github.com/stretchr/testify/suite"
)

var motd = reflected.StaticGetter[string]("motd", "hostapp.Session", "Motd", reflected.Property())

type FeatureTestSuite struct {
	suite.Suite
}

func (suite *FeatureTestSuite) capture(lines *[]string, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		*lines = append(*lines, prefix+" "+args)
	}, funcr.Options{Verbosity: verbosity})
}

func (suite *FeatureTestSuite) TestFeature() {
	suite.Run("Logs", func() {
		var lines []string
		_, report, err := reflected.Setup(
			reflected.Modules(hostapp.Module()),
			reflected.Tables(reflected.NewTable("log", motd)),
			log.Feature(suite.capture(&lines, 1)),
		).Bind()
		suite.Require().NoError(err)
		suite.Equal(1, report.Succeeded)
		suite.NotEmpty(lines)
		suite.Contains(lines[0], "reflected")
	})

	suite.Run("Verbosity", func() {
		m, err := reflected.Setup(log.Feature(logr.Discard(), log.Verbosity(3))).Manager()
		suite.Require().NoError(err)
		suite.Equal(3, m.Options().Verbosity)
	})

	suite.Run("InstallsOnce", func() {
		m, err := reflected.Setup(
			log.Feature(logr.Discard(), log.Verbosity(2)),
			log.Feature(logr.Discard(), log.Verbosity(5)),
		).Manager()
		suite.Require().NoError(err)
		suite.Equal(2, m.Options().Verbosity)
	})
}

func TestFeatureTestSuite(t *testing.T) {
	suite.Run(t, new(FeatureTestSuite))
}
