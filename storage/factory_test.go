package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/surveyintake/envelope-ingest-backend/interfaces"
)

func mustLocation(t *testing.T, uri string) interfaces.SinkLocation {
	t.Helper()
	loc, err := interfaces.NewSinkLocation(uri)
	require.NoError(t, err)
	return loc
}

func TestFactoryFileSink(t *testing.T) {
	factory := NewFactory(testLogger())

	sink, err := factory.SinkFor(mustLocation(t, "file://"+t.TempDir()))
	require.NoError(t, err)
	require.IsType(t, &FileSink{}, sink)
}

func TestFactorySQLiteSink(t *testing.T) {
	factory := NewFactory(testLogger())

	sink, err := factory.SinkFor(mustLocation(t, "sqlite://"+t.TempDir()+"/records.db?key=secret"))
	require.NoError(t, err)
	require.IsType(t, &SQLiteSink{}, sink)
	sink.(*SQLiteSink).Close()
}

func TestFactoryS3Sink(t *testing.T) {
	factory := NewFactory(testLogger())

	sink, err := factory.SinkFor(mustLocation(t, "s3://access:secret@bucket/ingest?region=eu-west-1&endpoint=http://127.0.0.1:9000"))
	require.NoError(t, err)
	require.IsType(t, &S3Sink{}, sink)
	require.Contains(t, sink.LocationURI(), "bucket")
	require.NotContains(t, sink.LocationURI(), "secret")
}

func TestFactoryIPFSSink(t *testing.T) {
	factory := NewFactory(testLogger())

	sink, err := factory.SinkFor(mustLocation(t, "ipfs://127.0.0.1:5001/"))
	require.NoError(t, err)
	require.IsType(t, &IPFSSink{}, sink)
	require.Equal(t, "ipfs-127.0.0.1-5001", sink.Name())
}

func TestFactoryUnsupportedScheme(t *testing.T) {
	_, err := interfaces.NewSinkLocation("redis://localhost")
	require.ErrorIs(t, err, interfaces.ErrInvalidSinkLocation)
}

func TestFactoryCreateMultiSink(t *testing.T) {
	factory := NewFactory(testLogger())

	single, err := factory.CreateMultiSink([]interfaces.SinkLocation{
		mustLocation(t, "file://"+t.TempDir()),
	})
	require.NoError(t, err)
	require.IsType(t, &FileSink{}, single)

	multi, err := factory.CreateMultiSink([]interfaces.SinkLocation{
		mustLocation(t, "file://"+t.TempDir()),
		mustLocation(t, "file://"+t.TempDir()),
	})
	require.NoError(t, err)
	require.IsType(t, &MultiSink{}, multi)

	_, err = factory.CreateMultiSink(nil)
	require.Error(t, err)
}
