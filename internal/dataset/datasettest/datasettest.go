// Package datasettest provides a small emissions CSV for tests in other packages.
package datasettest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rshade/co2focus/internal/dataset"
)

// SampleCSV is a trimmed OWID export. Panama rows are out of order and its
// coal_co2 column follows 2 + 0.5t + 0.1t² (t = year-2014) with 2015 and 2018
// missing. USA and the OWID world aggregate must be ignored by the loader.
const SampleCSV = `country,year,iso_code,population,co2,cumulative_co2,co2_per_capita,cement_co2,cumulative_cement_co2,coal_co2,cumulative_coal_co2,oil_co2,cumulative_oil_co2
Panama,2020,PAN,4314768,27.0,465.9,6.26,1.5,26.8,8.6,50.4,16.9,350.1
Panama,2014,PAN,3903987,25.0,300.0,6.40,1.0,20.0,2.0,30.0,22.0,250.0
Panama,2015,PAN,3968487,26.2,326.2,6.60,1.1,21.1,,,23.0,273.0
Panama,2016,PAN,4037078,27.5,353.7,6.81,1.2,22.3,3.4,35.9,23.2,296.2
Panama,2017,PAN,4106771,28.3,382.0,6.89,1.3,23.6,4.4,40.3,23.0,319.2
Panama,2018,PAN,4176873,30.1,412.1,7.21,1.4,25.0,,,24.1,343.3
Panama,2019,PAN,4246440,29.8,441.9,7.02,1.4,26.4,7.0,46.9,23.7,367.0
Costa Rica,2019,CRI,5047561,8.3,220.4,1.64,0.9,30.2,0.0,1.2,7.2,180.1
Costa Rica,2020,CRI,5084532,7.5,227.9,1.48,0.8,31.0,0.0,1.2,6.5,186.6
Mexico,2019,MEX,125085311,455.1,20305.2,3.64,22.6,700.4,38.1,1500.2,260.3,11000.5
Mexico,2020,MEX,125998302,383.4,20688.6,3.04,21.0,721.4,30.2,1530.4,220.1,11220.6
United States,2020,USA,335942003,4715.7,421906.9,14.04,40.7,1800.0,923.1,180000.0,2080.6,150000.0
World,2020,,7856138000,35264.0,1740000.0,4.49,1650.0,45000.0,14000.0,800000.0,11200.0,600000.0
`

// WriteSample writes SampleCSV into dir and returns the file path.
func WriteSample(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "owid-co2-data.csv")
	require.NoError(t, os.WriteFile(path, []byte(SampleCSV), 0o600))
	return path
}

// LoadSample parses SampleCSV.
func LoadSample(t testing.TB) *dataset.Dataset {
	t.Helper()
	d, err := dataset.Load(context.Background(), WriteSample(t, t.TempDir()))
	require.NoError(t, err)
	return d
}
