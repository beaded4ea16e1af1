package util_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/janus-lang/janus-sub005/src/util"
)

func TestParseArgsDefaults(t *testing.T) {
	opt, err := util.ParseArgs(nil)
	require.NoError(t, err)
	require.Equal(t, 1, opt.Threads)
	require.Equal(t, "x86_64-unknown-linux-gnu", opt.TargetTriple)
}

func TestParseArgsThreadCount(t *testing.T) {
	opt, err := util.ParseArgs([]string{"-t", "4", "-vb", "prog.src"})
	require.NoError(t, err)
	require.Equal(t, 4, opt.Threads)
	require.True(t, opt.Verbose)
	require.Equal(t, "prog.src", opt.Src)
}

func TestParseArgsRejectsBadThreadCount(t *testing.T) {
	_, err := util.ParseArgs([]string{"-t", "0"})
	require.Error(t, err)
}

func TestLabelerProducesUniqueSequentialNames(t *testing.T) {
	l := util.NewLabeler()
	a := l.New(util.LabelIfThen)
	b := l.New(util.LabelIfThen)
	require.NotEqual(t, a, b)
	require.Equal(t, "if.then_000", a)
	require.Equal(t, "if.then_001", b)
}

func TestPerrorCollectsAcrossGoroutines(t *testing.T) {
	pe := util.NewPerror(4)
	done := make(chan struct{})
	go func() {
		pe.Append(nil)
		pe.Append(errTest{"boom"})
		close(done)
	}()
	<-done
	pe.Stop()
	require.Equal(t, 1, pe.Len())
}

type errTest struct{ msg string }

func (e errTest) Error() string { return e.msg }
