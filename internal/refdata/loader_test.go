package refdata_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/infoseceng/releasegate/internal/refdata"
)

func writeReferenceFile(testInstance *testing.T, fileName string, content string) string {
	testInstance.Helper()
	filePath := filepath.Join(testInstance.TempDir(), fileName)
	require.NoError(testInstance, os.WriteFile(filePath, []byte(content), 0o644))
	return filePath
}

func TestCSVLoaderLoadPipelines(testInstance *testing.T) {
	filePath := writeReferenceFile(testInstance, "pipelines.csv",
		"ado-org,platform,41,build-payments\n"+
			"ado-org,platform\n"+
			"ado-org,platform,not-a-number,build-billing\n"+
			"ado-org,mobile,77,build-mobile\n")

	table, loadResult, loadError := refdata.NewCSVLoader().LoadPipelines(filePath)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, 2, loadResult.SkippedRows)
	require.Equal(testInstance, 2, table.Size())

	identity, found := table.LookupByDisplayName("build-payments")
	require.True(testInstance, found)
	require.Equal(testInstance, refdata.PipelineIdentity{Organization: "ado-org", Project: "platform", ID: 41}, identity)
}

func TestCSVLoaderLoadIgnoredRepositories(testInstance *testing.T) {
	filePath := writeReferenceFile(testInstance, "ignore.csv",
		"payments-org,legacy-api\n"+
			"short-row\n"+
			"payments-org, \n")

	ignoredPairs, loadResult, loadError := refdata.NewCSVLoader().LoadIgnoredRepositories(filePath)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, 2, loadResult.SkippedRows)
	require.Equal(testInstance, []refdata.IgnoredRepository{{Organization: "payments-org", Repository: "legacy-api"}}, ignoredPairs)
}

func TestCSVLoaderLoadOwners(testInstance *testing.T) {
	filePath := writeReferenceFile(testInstance, "owners.csv",
		"Payments-API,alice@example.com\n"+
			"orphan-row\n")

	owners, loadResult, loadError := refdata.NewCSVLoader().LoadOwners(filePath)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, 1, loadResult.SkippedRows)
	require.Equal(testInstance, map[string]string{"payments-api": "alice@example.com"}, owners)
}

func TestCSVLoaderMissingFile(testInstance *testing.T) {
	_, _, loadError := refdata.NewCSVLoader().LoadPipelines(filepath.Join(testInstance.TempDir(), "absent.csv"))
	require.Error(testInstance, loadError)
}
