package dlis

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeRecordFile lays out an explicit metadata record, an implicit data
// record sharing a visible record with a second implicit record.
func threeRecordFile(t *testing.T) string {
	t.Helper()
	return writeTestFile(t,
		testSUL(),
		vr(seg(segExplicit, 0, testEFLRBody())),
		vr(
			seg(0x00, 0, []byte("frame data one")),
			seg(0x00, 0, []byte("frame data two")),
		),
	)
}

func TestFile_IndexAllYieldsOrderedEntries(t *testing.T) {
	f, err := Open(threeRecordFile(t))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "TEST-STORAGE-SET", f.Label().ID)
	assert.False(t, f.EOF())

	require.NoError(t, f.IndexAll())

	ix := f.Index()
	require.Equal(t, 3, ix.Len())
	assert.True(t, ix.Complete())
	assert.True(t, f.EOF())

	var prev int64
	for i := 0; i < ix.Len(); i++ {
		e := ix.Entry(i)
		assert.Greater(t, e.Position, prev)
		prev = e.Position
	}
	assert.True(t, ix.Entry(0).Explicit)
	assert.False(t, ix.Entry(1).Explicit)
	assert.False(t, ix.Entry(2).Explicit)

	// third record starts mid visible record
	assert.NotZero(t, ix.Entry(2).Residual)
}

func TestFile_EOFBecomesTrueExactlyAfterLastRecord(t *testing.T) {
	f, err := Open(threeRecordFile(t))
	require.NoError(t, err)
	defer f.Close()

	for i := 0; i < 3; i++ {
		assert.False(t, f.EOF(), "eof before record %d", i)
		_, err := f.Advance()
		require.NoError(t, err)
	}
	assert.True(t, f.EOF())

	_, err = f.Advance()
	assert.Equal(t, io.EOF, err)
	assert.True(t, f.EOF())
}

func TestFile_LabelOnlyFile(t *testing.T) {
	f, err := Open(writeTestFile(t, testSUL()))
	require.NoError(t, err)
	defer f.Close()

	assert.True(t, f.EOF())
	_, err = f.Advance()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 0, f.Index().Len())
}

func TestFile_OpenRejectsBadLabel(t *testing.T) {
	bad := testSUL()
	copy(bad[4:9], "XXXXX")
	_, err := Open(writeTestFile(t, bad))
	assert.ErrorIs(t, err, ErrInvalidStorageLabel)

	_, err = Open(writeTestFile(t, bad[:40]))
	assert.ErrorIs(t, err, ErrInvalidStorageLabel)
}

func TestFile_TruncatedFileKeepsEarlierEntries(t *testing.T) {
	full := vr(seg(0x00, 0, []byte("record two")))
	path := writeTestFile(t,
		testSUL(),
		vr(seg(segExplicit, 0, testEFLRBody())),
		full[:len(full)-6], // cut mid segment
	)

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Advance()
	require.NoError(t, err)

	_, err = f.Advance()
	var trunc *TruncatedError
	require.ErrorAs(t, err, &trunc)

	assert.Equal(t, 1, f.Index().Len())
	assert.False(t, f.Index().Complete())
}

func TestFile_RawRecordAt(t *testing.T) {
	f, err := Open(threeRecordFile(t))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, f.IndexAll())

	e := f.Index().Entry(2)
	got, err := f.RawRecordAt(e.Position)
	require.NoError(t, err)
	assert.Equal(t, []byte("frame data two"), got)

	// fetching twice yields the same bytes; payloads are not cached
	again, err := f.RawRecordAt(e.Position)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestFile_RawRecordAtRejectsUnindexedOffset(t *testing.T) {
	f, err := Open(threeRecordFile(t))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, f.IndexAll())

	_, err = f.RawRecordAt(f.Index().Entry(0).Position + 1)
	assert.ErrorIs(t, err, ErrInvalidBookmark)
}

func TestFile_DecodeExplicitAt(t *testing.T) {
	f, err := Open(threeRecordFile(t))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, f.IndexAll())

	pos := f.Index().Entry(0).Position
	sets, err := f.DecodeExplicitAt(pos)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, "CHANNEL", sets[0].Type)

	// decoding the same position twice is structurally equal
	again, err := f.DecodeExplicitAt(pos)
	require.NoError(t, err)
	assert.Equal(t, sets, again)
}

func TestFile_DecodeExplicitAtRejectsImplicit(t *testing.T) {
	f, err := Open(threeRecordFile(t))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, f.IndexAll())

	_, err = f.DecodeExplicitAt(f.Index().Entry(1).Position)
	assert.ErrorIs(t, err, ErrImplicitRecord)
}

func TestFile_DecodeExplicitAtRejectsEncrypted(t *testing.T) {
	path := writeTestFile(t,
		testSUL(),
		vr(seg(segExplicit|segEncrypted, 0, []byte{0x01, 0x02, 0x03, 0x04})),
	)
	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, f.IndexAll())

	e := f.Index().Entry(0)
	assert.True(t, e.Encrypted)

	_, err = f.DecodeExplicitAt(e.Position)
	assert.ErrorIs(t, err, ErrEncryptedRecord)

	// the raw payload stays reachable
	raw, err := f.RawRecordAt(e.Position)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, raw)
}

func TestFile_RandomAccessDoesNotDisturbScan(t *testing.T) {
	f, err := Open(threeRecordFile(t))
	require.NoError(t, err)
	defer f.Close()

	first, err := f.Advance()
	require.NoError(t, err)

	_, err = f.RawRecordAt(first.Position)
	require.NoError(t, err)

	second, err := f.Advance()
	require.NoError(t, err)
	assert.Greater(t, second.Position, first.Position)

	_, err = f.Advance()
	require.NoError(t, err)
	_, err = f.Advance()
	assert.Equal(t, io.EOF, err)
}

func TestFile_RestoreIndex(t *testing.T) {
	path := threeRecordFile(t)

	f, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, f.IndexAll())
	entries := append([]IndexEntry{}, f.Index().Entries()...)
	require.NoError(t, f.Close())

	g, err := Open(path)
	require.NoError(t, err)
	defer g.Close()
	require.NoError(t, g.RestoreIndex(entries))

	assert.True(t, g.EOF())
	_, err = g.Advance()
	assert.Equal(t, io.EOF, err)

	sets, err := g.DecodeExplicitAt(entries[0].Position)
	require.NoError(t, err)
	assert.Equal(t, "CHANNEL", sets[0].Type)

	raw, err := g.RawRecordAt(entries[2].Position)
	require.NoError(t, err)
	assert.Equal(t, []byte("frame data two"), raw)
}

func TestFile_RestoreIndexRejectsDisorder(t *testing.T) {
	f, err := Open(threeRecordFile(t))
	require.NoError(t, err)
	defer f.Close()

	err = f.RestoreIndex([]IndexEntry{
		{Position: 200}, {Position: 100},
	})
	assert.Error(t, err)
}

func TestFile_ClosedHandle(t *testing.T) {
	f, err := Open(threeRecordFile(t))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = f.Advance()
	assert.ErrorIs(t, err, ErrFileClosed)
	_, err = f.RawRecordAt(SULSize)
	assert.ErrorIs(t, err, ErrFileClosed)
	assert.NoError(t, f.Close())
}
