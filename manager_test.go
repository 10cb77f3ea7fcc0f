package reflected_test

import (
	"errors"
	"reflect"
	"strconv"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/miruken-go/reflected"
	"github.com/miruken-go/reflected/catalog"
	"github.com/miruken-go/reflected/internal/hostapp"
	"github.com/miruken-go/reflected/internal/hostapp/legacy"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

type ManagerTestSuite struct {
	suite.Suite
	manager *reflected.Manager
}

func (suite *ManagerTestSuite) SetupTest() {
	host()
	hostapp.Reset()
	suite.manager = reflected.NewManager(
		reflected.Options{}, testr.New(suite.T()), hostapp.Module())
}

func (suite *ManagerTestSuite) SetupSubTest() {
	suite.SetupTest()
}

func (suite *ManagerTestSuite) process(
	decls ...reflected.Declaration,
) *reflected.Manager {
	m := reflected.NewManager(reflected.Options{}, testr.New(suite.T()), hostapp.Module())
	_, err := m.ProcessAll(reflected.NewTable("host", decls...))
	suite.Require().NoError(err)
	return m
}

func (suite *ManagerTestSuite) TestProcessAll() {
	suite.Run("Report", func() {
		report, err := suite.manager.ProcessAll(host())
		suite.Nil(err)
		suite.Equal(25, report.Attempted)
		suite.Equal(24, report.Succeeded)
		suite.Equal(1, report.Failed())
		failure, ok := report.Failure("host/restart")
		suite.True(ok)
		suite.Equal(reflected.NotFound, failure.Status)
		suite.True(failure.Optional)
	})

	suite.Run("ContinuesPastFailures", func() {
		missing := reflected.StaticGetter[int]("missing", sessionType, "minPlayers")
		m := suite.process(missing, maxPlayers)
		report := m.Report()
		suite.Equal(2, report.Attempted)
		suite.Equal(1, report.Succeeded)
		suite.True(m.Bound(maxPlayers))
		suite.False(m.Bound(missing))
	})

	suite.Run("Malformed", func() {
		bad := &reflected.Descriptor{
			Name:     "bad",
			Type:     sessionType,
			Member:   "limit",
			Kind:     catalog.Field,
			Shape:    reflected.InvokerShape,
			Callable: reflect.TypeFor[func()](),
		}
		report, err := suite.manager.ProcessAll(reflected.NewTable("host", bad, maxPlayers))
		suite.Nil(report)
		var de *reflected.DescriptorError
		suite.Require().True(errors.As(err, &de))
		suite.Same(bad, de.Descriptor)
		suite.False(suite.manager.Bound(maxPlayers))
	})

	suite.Run("MalformedDiscoversNothing", func() {
		bad := &reflected.Descriptor{
			Name:     "late",
			Type:     sessionType,
			Member:   "limit",
			Kind:     catalog.Field,
			Shape:    reflected.InvokerShape,
			Callable: reflect.TypeFor[func()](),
		}
		_, err := suite.manager.ProcessAll(reflected.NewTable("host", maxPlayers, bad))
		suite.Error(err)
		suite.Empty(suite.manager.Descriptors())
		suite.Empty(suite.manager.Getters())
		_, ok := suite.manager.Outcome(maxPlayers)
		suite.False(ok)
		report, err := suite.manager.ProcessAll(host())
		suite.Require().NoError(err)
		suite.Equal(25, report.Attempted)
	})

	suite.Run("DuplicateInBatch", func() {
		first := reflected.StaticGetter[int]("players", sessionType, "maxPlayers")
		second := reflected.StaticGetter[int]("players", sessionType, "maxPlayers")
		err := suite.manager.Discover(
			reflected.NewTable("lobby", first),
			reflected.NewTable("lobby", second))
		var de *reflected.DescriptorError
		suite.Require().True(errors.As(err, &de))
		suite.Same(second.Descriptor(), de.Descriptor)
		suite.Empty(suite.manager.Descriptors())
	})
}

func (suite *ManagerTestSuite) TestScenarios() {
	suite.Run("StaticFieldGetter", func() {
		suite.True(suite.manager.Process(maxPlayers))
		get, ok := maxPlayers.Get(suite.manager)
		suite.Require().True(ok)
		suite.Equal(42, get())
	})

	suite.Run("RemovedMethod", func() {
		suite.False(suite.manager.Process(restart))
		report := suite.manager.Report()
		suite.Require().Len(report.Failures, 1)
		suite.Equal("host/restart", report.Failures[0].Binding)
		suite.Equal(reflected.NotFound, report.Failures[0].Status)
		var nf *reflected.NotFoundError
		suite.True(errors.As(report.Failures[0].Err, &nf))
		_, ok := restart.Get(suite.manager)
		suite.False(ok)
		suite.Panics(func() { restart.Must(suite.manager) })
	})

	suite.Run("PrivateInstanceSetter", func() {
		suite.True(suite.manager.Process(setPassword))
		session := hostapp.NewSession("alpha")
		setPassword.Must(suite.manager)(session, "hunter2")
		suite.Equal("hunter2", session.Password())
	})
}

func (suite *ManagerTestSuite) TestProcess() {
	suite.Run("Idempotent", func() {
		suite.True(suite.manager.Process(password))
		first, ok := suite.manager.Outcome(password)
		suite.True(ok)
		get := password.Must(suite.manager)
		suite.True(suite.manager.Process(password))
		second, _ := suite.manager.Outcome(password)
		suite.Equal(first, second)
		suite.Equal(reflect.ValueOf(get).Pointer(),
			reflect.ValueOf(password.Must(suite.manager)).Pointer())
	})

	suite.Run("IdempotentFailure", func() {
		suite.False(suite.manager.Process(restart))
		first, _ := suite.manager.Outcome(restart)
		suite.False(suite.manager.Process(restart))
		second, _ := suite.manager.Outcome(restart)
		suite.Same(first.Err, second.Err)
	})

	suite.Run("RequiresTable", func() {
		loose := reflected.StaticGetter[int]("loose", sessionType, "maxPlayers")
		defer func() {
			var de *reflected.DescriptorError
			err, _ := recover().(error)
			suite.Require().True(errors.As(err, &de))
			suite.Contains(de.Error(), "Table")
			suite.Empty(suite.manager.Descriptors())
		}()
		suite.manager.Process(loose)
		suite.Fail("expected a malformed binding panic")
	})

	suite.Run("NotProcessed", func() {
		_, ok := suite.manager.Outcome(motd)
		suite.False(ok)
		_, ok = motd.Get(suite.manager)
		suite.False(ok)
	})

	suite.Run("StaticSlotsPopulated", func() {
		_, err := suite.manager.ProcessAll(host())
		suite.Require().NoError(err)
		for _, d := range suite.manager.Descriptors() {
			if outcome, _ := suite.manager.Outcome(d); outcome.Bound() && d.Static {
				slot, ok := suite.manager.Slot(d)
				suite.True(ok, d.String())
				suite.NotNil(slot, d.String())
			}
		}
	})

	suite.Run("Strategy", func() {
		m := suite.process(password, limit, format, newWorld)
		outcome, _ := m.Outcome(password)
		suite.Equal(reflected.Direct, outcome.Strategy)
		outcome, _ = m.Outcome(format)
		suite.Equal(reflected.Direct, outcome.Strategy)
		outcome, _ = m.Outcome(limit)
		suite.Equal(reflected.Dynamic, outcome.Strategy)
		outcome, _ = m.Outcome(newWorld)
		suite.Equal(reflected.Dynamic, outcome.Strategy)
	})
}

func (suite *ManagerTestSuite) TestCategories() {
	suite.Run("Partition", func() {
		suite.Require().NoError(suite.manager.Discover(host()))
		seen := make(map[*reflected.Descriptor]int)
		categories := [][]reflected.Entry{
			suite.manager.Getters(),
			suite.manager.Setters(),
			suite.manager.Invokers(),
			suite.manager.MemberInfo(),
			suite.manager.Events(),
		}
		for _, entries := range categories {
			for _, e := range entries {
				seen[e.Descriptor]++
				suite.False(e.Processed)
			}
		}
		all := suite.manager.Descriptors()
		suite.Len(seen, len(all))
		for _, d := range all {
			suite.Equal(1, seen[d], d.String())
		}
	})

	suite.Run("IndependentOfOutcome", func() {
		_, err := suite.manager.ProcessAll(host())
		suite.Require().NoError(err)
		invokers := suite.manager.Invokers()
		suite.Len(invokers, 9)
		var failed int
		for _, e := range invokers {
			suite.True(e.Processed)
			if !e.Outcome.Bound() {
				failed++
			}
		}
		suite.Equal(1, failed)
		suite.Len(suite.manager.Getters(), 5)
		suite.Len(suite.manager.Setters(), 5)
		suite.Len(suite.manager.MemberInfo(), 2)
		suite.Len(suite.manager.Events(), 4)
	})

	suite.Run("DuplicateIdentity", func() {
		other := reflected.StaticGetter[int]("maxPlayers", sessionType, "maxPlayers")
		suite.Require().NoError(suite.manager.Discover(host()))
		err := suite.manager.Discover(reflected.NewTable("host", other))
		var de *reflected.DescriptorError
		suite.True(errors.As(err, &de))
	})
}

func (suite *ManagerTestSuite) TestFailures() {
	suite.Run("StaticMismatch", func() {
		limitStatic := reflected.StaticGetter[int]("limitStatic", sessionType, "limit")
		m := suite.process(limitStatic)
		outcome, _ := m.Outcome(limitStatic)
		suite.Equal(reflected.SignatureMismatch, outcome.Status)
		var sm *reflected.SignatureMismatchError
		suite.True(errors.As(outcome.Err, &sm))
	})

	suite.Run("NoOverloadAccepts", func() {
		formatBool := reflected.StaticInvoker[reflected.Call](
			"formatBool", sessionType, "format",
			reflected.WithSignature(reflected.Types(true), nil))
		reflected.NewTable("host", formatBool)
		res := suite.manager.Resolver().Resolve(formatBool.Descriptor())
		suite.Equal(reflected.SignatureMismatch, res.Status)
		suite.Equal(2, res.Candidates)
		suite.Nil(res.Member)
		var sm *reflected.SignatureMismatchError
		suite.Require().True(errors.As(res.Err, &sm))
		suite.Contains(sm.Error(), "bool")
		suite.False(suite.manager.Process(formatBool))
		outcome, _ := suite.manager.Outcome(formatBool)
		suite.Equal(reflected.SignatureMismatch, outcome.Status)
		_, ok := formatBool.Get(suite.manager)
		suite.False(ok)
	})

	suite.Run("TypeMismatch", func() {
		text := reflected.StaticGetter[string]("text", sessionType, "maxPlayers")
		m := suite.process(text)
		outcome, _ := m.Outcome(text)
		suite.Equal(reflected.SynthesisFailed, outcome.Status)
		var se *reflected.SynthesisError
		suite.True(errors.As(outcome.Err, &se))
		_, ok := text.Get(m)
		suite.False(ok)
	})

	suite.Run("ReadOnlyProperty", func() {
		setPlayers := reflected.Setter[*hostapp.Session, []string](
			"setPlayers", sessionType, "Players", reflected.Property())
		m := suite.process(setPlayers)
		outcome, _ := m.Outcome(setPlayers)
		suite.Equal(reflected.SynthesisFailed, outcome.Status)
	})

	suite.Run("AmbiguousType", func() {
		id := reflected.Getter[any, int]("id", "Session", "id")
		m := reflected.NewManager(reflected.Options{}, testr.New(suite.T()),
			hostapp.Module(), legacy.Module())
		reflected.NewTable("legacy", id)
		suite.False(m.Process(id))
		outcome, _ := m.Outcome(id)
		suite.Equal(reflected.AmbiguousOverload, outcome.Status)
	})

	suite.Run("QualifiedType", func() {
		id := reflected.Getter[*legacy.Session, int](
			"id", "github.com/miruken-go/reflected/internal/hostapp/legacy.Session", "id")
		m := reflected.NewManager(reflected.Options{}, testr.New(suite.T()),
			hostapp.Module(), legacy.Module())
		reflected.NewTable("legacy", id)
		suite.True(m.Process(id))
		suite.Equal(0, id.Must(m)(&legacy.Session{}))
	})

	suite.Run("StrictOverloads", func() {
		anyFormat := reflected.StaticInvoker[reflected.Call]("anyFormat", sessionType, "format")
		m := reflected.NewManager(
			reflected.Options{Overloads: reflected.StrictOverloads},
			testr.New(suite.T()), hostapp.Module())
		reflected.NewTable("strict", anyFormat)
		suite.False(m.Process(anyFormat))
		outcome, _ := m.Outcome(anyFormat)
		suite.Equal(reflected.AmbiguousOverload, outcome.Status)
		var ae *reflected.AmbiguousOverloadError
		suite.Require().True(errors.As(outcome.Err, &ae))
		suite.Len(ae.Candidates, 2)
	})
}

func (suite *ManagerTestSuite) TestConcurrentInvocation() {
	_, err := suite.manager.ProcessAll(host())
	suite.Require().NoError(err)
	getPassword := password.Must(suite.manager)
	setPwd := setPassword.Must(suite.manager)
	getLimit := limit.Must(suite.manager)
	fmtCount := formatCount.Must(suite.manager)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		i := i
		g.Go(func() error {
			session := hostapp.NewSession("s")
			pwd := string(rune('a' + i))
			for n := 0; n < 100; n++ {
				setPwd(session, pwd)
				if got := getPassword(session); got != pwd {
					return errors.New("unexpected password " + got)
				}
				if got := getLimit(session); got != 42 {
					return errors.New("unexpected limit")
				}
				if got := fmtCount("x", i); got != "X x"+strconv.Itoa(i) {
					return errors.New("unexpected format " + got)
				}
			}
			return nil
		})
	}
	suite.NoError(g.Wait())
}

func TestManagerTestSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}
