package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	pipelineRowFieldCountConstant  = 4
	ignoreRowFieldCountConstant    = 2
	ownerRowFieldCountConstant     = 2
	referenceFileOpenErrorTemplate = "unable to open reference file %s: %w"
	referenceFileReadErrorTemplate = "unable to read reference file %s: %w"
)

// LoadResult carries a loaded table plus the number of malformed rows skipped.
type LoadResult struct {
	SkippedRows int
}

// CSVLoader reads reference tables from delimited files. Malformed or short
// rows are counted and skipped, never fatal.
type CSVLoader struct{}

// NewCSVLoader constructs a CSVLoader.
func NewCSVLoader() *CSVLoader {
	return &CSVLoader{}
}

// LoadPipelines reads (organization, project, id, display name) rows into a pipeline table.
func (loader *CSVLoader) LoadPipelines(filePath string) (*PipelineTable, LoadResult, error) {
	records, readError := loader.readRecords(filePath)
	if readError != nil {
		return nil, LoadResult{}, readError
	}

	table := NewPipelineTable()
	result := LoadResult{}
	for _, record := range records {
		if len(record) < pipelineRowFieldCountConstant {
			result.SkippedRows++
			continue
		}

		pipelineIdentifier, parseError := strconv.Atoi(strings.TrimSpace(record[2]))
		if parseError != nil {
			result.SkippedRows++
			continue
		}

		identity := PipelineIdentity{
			Organization: strings.TrimSpace(record[0]),
			Project:      strings.TrimSpace(record[1]),
			ID:           pipelineIdentifier,
		}
		table.Add(identity, record[3])
	}

	return table, result, nil
}

// LoadIgnoredRepositories reads (organization, repository) exclusion rows.
func (loader *CSVLoader) LoadIgnoredRepositories(filePath string) ([]IgnoredRepository, LoadResult, error) {
	records, readError := loader.readRecords(filePath)
	if readError != nil {
		return nil, LoadResult{}, readError
	}

	var ignoredPairs []IgnoredRepository
	result := LoadResult{}
	for _, record := range records {
		if len(record) < ignoreRowFieldCountConstant {
			result.SkippedRows++
			continue
		}
		organization := strings.TrimSpace(record[0])
		repository := strings.TrimSpace(record[1])
		if len(organization) == 0 || len(repository) == 0 {
			result.SkippedRows++
			continue
		}
		ignoredPairs = append(ignoredPairs, IgnoredRepository{Organization: organization, Repository: repository})
	}

	return ignoredPairs, result, nil
}

// LoadOwners reads (repository, owner email) rows into a lookup map.
func (loader *CSVLoader) LoadOwners(filePath string) (map[string]string, LoadResult, error) {
	records, readError := loader.readRecords(filePath)
	if readError != nil {
		return nil, LoadResult{}, readError
	}

	owners := make(map[string]string)
	result := LoadResult{}
	for _, record := range records {
		if len(record) < ownerRowFieldCountConstant {
			result.SkippedRows++
			continue
		}
		repository := strings.TrimSpace(record[0])
		ownerEmail := strings.TrimSpace(record[1])
		if len(repository) == 0 || len(ownerEmail) == 0 {
			result.SkippedRows++
			continue
		}
		owners[strings.ToLower(repository)] = ownerEmail
	}

	return owners, result, nil
}

func (loader *CSVLoader) readRecords(filePath string) ([][]string, error) {
	fileHandle, openError := os.Open(filePath)
	if openError != nil {
		return nil, fmt.Errorf(referenceFileOpenErrorTemplate, filePath, openError)
	}
	defer fileHandle.Close()

	csvReader := csv.NewReader(fileHandle)
	csvReader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, readError := csvReader.Read()
		if readError == io.EOF {
			break
		}
		if readError != nil {
			if _, isParseError := readError.(*csv.ParseError); isParseError {
				continue
			}
			return nil, fmt.Errorf(referenceFileReadErrorTemplate, filePath, readError)
		}
		records = append(records, record)
	}

	return records, nil
}
