package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Describe(t *testing.T) {
	table, err := NewTable(
		[]string{"delito", "cantidad"},
		[][]string{
			{"Robo", "10"},
			{"Robo", "20"},
			{"Hurto", "30"},
			{"", ""},
		},
	)
	require.NoError(t, err)

	summaries := table.Describe()
	require.Len(t, summaries, 2)

	text := summaries[0]
	assert.Equal(t, "delito", text.Column)
	assert.Equal(t, "text", text.Kind)
	assert.Equal(t, 3, text.Count)
	assert.Equal(t, 2, text.Unique)
	assert.Equal(t, "Robo", text.Top)
	assert.Equal(t, 2, text.Freq)
	assert.Nil(t, text.Mean)
	assert.Nil(t, text.Std)

	num := summaries[1]
	assert.Equal(t, "cantidad", num.Column)
	assert.Equal(t, "number", num.Kind)
	assert.Equal(t, 3, num.Count)
	require.NotNil(t, num.Mean)
	assert.Equal(t, 20.0, *num.Mean)
	require.NotNil(t, num.Std)
	assert.Equal(t, 10.0, *num.Std) // sample std: sqrt((100+0+100)/2)
	require.NotNil(t, num.Min)
	assert.Equal(t, 10.0, *num.Min)
	require.NotNil(t, num.Max)
	assert.Equal(t, 30.0, *num.Max)
}

func TestTable_DescribeTopTieIsDeterministic(t *testing.T) {
	table, err := NewTable(
		[]string{"delito"},
		[][]string{{"Robo"}, {"Hurto"}},
	)
	require.NoError(t, err)

	s := table.Describe()[0]
	assert.Equal(t, "Hurto", s.Top)
	assert.Equal(t, 1, s.Freq)
}

func TestTable_DescribeSingleValueHasNoStd(t *testing.T) {
	table, err := NewTable(
		[]string{"cantidad"},
		[][]string{{"42"}},
	)
	require.NoError(t, err)

	s := table.Describe()[0]
	assert.Equal(t, 1, s.Count)
	require.NotNil(t, s.Mean)
	assert.Equal(t, 42.0, *s.Mean)
	assert.Nil(t, s.Std)
}

func TestTable_DescribeAllNullNumeric(t *testing.T) {
	table, err := NewTable(
		[]string{"cantidad"},
		[][]string{{""}, {""}},
	)
	require.NoError(t, err)

	s := table.Describe()[0]
	assert.Equal(t, "number", s.Kind)
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, 0, s.Unique)
	assert.Nil(t, s.Mean)
	assert.Nil(t, s.Min)
	assert.Nil(t, s.Max)
	assert.Nil(t, s.Std)
}
