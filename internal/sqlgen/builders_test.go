package sqlgen

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/mssqlvec/internal/core"
	"github.com/rzpsarthak13/mssqlvec/pkg/schema"
)

type testHotel struct {
	ID        int64     `mssqlvec:"key"`
	Name      string    `mssqlvec:"data,indexed"`
	Active    bool      `mssqlvec:"data"`
	Embedding []float32 `mssqlvec:"vector,dim=4"`
}

func testModel(t *testing.T) *schema.Model {
	t.Helper()
	model, err := schema.FromType(reflect.TypeOf(testHotel{}))
	require.NoError(t, err)
	return model
}

func storageRow(values map[string]interface{}) *core.StorageRow {
	row := core.NewStorageRow(len(values))
	for _, col := range []string{"ID", "Name", "Active", "Embedding"} {
		row.Set(col, values[col])
	}
	return row
}

func TestBuildCreateTable(t *testing.T) {
	cmd, err := BuildCreateTable(testModel(t), "dbo", "Hotels", true)
	require.NoError(t, err)

	sql := cmd.SQL()
	assert.Contains(t, sql, "IF OBJECT_ID(N'[dbo].[Hotels]', N'U') IS NULL")
	assert.Contains(t, sql, "CREATE TABLE [dbo].[Hotels]")
	assert.Contains(t, sql, "[ID] BIGINT NOT NULL")
	assert.Contains(t, sql, "[Name] NVARCHAR(MAX) NULL")
	assert.Contains(t, sql, "[Active] BIT NULL")
	assert.Contains(t, sql, "[Embedding] VECTOR(4) NULL")
	assert.Contains(t, sql, "PRIMARY KEY ([ID])")
	assert.Contains(t, sql, "CREATE INDEX [idx_Hotels_Name] ON [dbo].[Hotels] ([Name])")
	assert.Contains(t, sql, "END")
	assert.Empty(t, cmd.Parameters())
}

func TestBuildCreateTableNoGuard(t *testing.T) {
	cmd, err := BuildCreateTable(testModel(t), "dbo", "Hotels", false)
	require.NoError(t, err)
	assert.NotContains(t, cmd.SQL(), "OBJECT_ID")
}

func TestBuildDropTable(t *testing.T) {
	cmd := BuildDropTable("dbo", "Hotels")
	assert.Equal(t, "DROP TABLE IF EXISTS [dbo].[Hotels];", cmd.SQL())
}

func TestBuildTableExists(t *testing.T) {
	cmd := BuildTableExists("dbo", "Hotels")
	assert.Contains(t, cmd.SQL(), "INFORMATION_SCHEMA.TABLES")
	require.Len(t, cmd.Parameters(), 2)
	assert.Equal(t, "dbo", cmd.Parameters()[0].Value)
	assert.Equal(t, "Hotels", cmd.Parameters()[1].Value)
}

func TestBuildListTables(t *testing.T) {
	cmd := BuildListTables("")
	assert.NotContains(t, cmd.SQL(), "TABLE_SCHEMA = ")
	assert.Empty(t, cmd.Parameters())

	cmd = BuildListTables("sales")
	assert.Contains(t, cmd.SQL(), "TABLE_SCHEMA = @")
	require.Len(t, cmd.Parameters(), 1)
}

func TestBuildMerge(t *testing.T) {
	model := testModel(t)
	rows := []*core.StorageRow{
		storageRow(map[string]interface{}{"ID": int64(1), "Name": "Grand", "Active": true, "Embedding": "[1,2,3,4]"}),
		storageRow(map[string]interface{}{"ID": int64(2), "Name": "Plaza", "Active": false, "Embedding": nil}),
	}
	cmd, err := BuildMerge(model, "dbo", "Hotels", rows)
	require.NoError(t, err)

	sql := cmd.SQL()
	assert.Contains(t, sql, "DECLARE @UpsertedKeys TABLE (KeyColumn BIGINT);")
	assert.Contains(t, sql, "MERGE INTO [dbo].[Hotels] AS t")
	assert.Contains(t, sql, "AS s ([ID], [Name], [Active], [Embedding])")
	assert.Contains(t, sql, "ON (t.[ID] = s.[ID])")
	assert.Contains(t, sql, "t.[Name] = s.[Name]")
	assert.NotContains(t, sql, "t.[ID] = s.[ID],")
	assert.Contains(t, sql, "CAST(@Embedding_3 AS VECTOR(4))")
	assert.Contains(t, sql, "OUTPUT inserted.[ID] INTO @UpsertedKeys (KeyColumn);")
	assert.Contains(t, sql, "SELECT KeyColumn FROM @UpsertedKeys;")

	// every column of every row travels as a parameter, NULLs included
	require.Len(t, cmd.Parameters(), 8)
	assert.Equal(t, int64(1), cmd.Parameters()[0].Value)
	assert.Nil(t, cmd.Parameters()[7].Value)
}

func TestBuildMergeEmpty(t *testing.T) {
	_, err := BuildMerge(testModel(t), "dbo", "Hotels", nil)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestBuildSelect(t *testing.T) {
	cmd, err := BuildSelect(testModel(t), "dbo", "Hotels", []interface{}{int64(1), int64(2)}, false)
	require.NoError(t, err)
	assert.Contains(t, cmd.SQL(), "SELECT [ID], [Name], [Active]")
	assert.NotContains(t, cmd.SQL(), "[Embedding]")
	assert.Contains(t, cmd.SQL(), "WHERE [ID] IN (@ID_0, @ID_1)")
	require.Len(t, cmd.Parameters(), 2)

	cmd, err = BuildSelect(testModel(t), "dbo", "Hotels", []interface{}{int64(1)}, true)
	require.NoError(t, err)
	assert.Contains(t, cmd.SQL(), "[Embedding]")

	_, err = BuildSelect(testModel(t), "dbo", "Hotels", nil, false)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestBuildDelete(t *testing.T) {
	cmd, err := BuildDelete(testModel(t), "dbo", "Hotels", []interface{}{int64(1), int64(2)})
	require.NoError(t, err)
	assert.Contains(t, cmd.SQL(), "DELETE FROM [dbo].[Hotels]")
	assert.Contains(t, cmd.SQL(), "WHERE [ID] IN (@ID_0, @ID_1)")

	_, err = BuildDelete(testModel(t), "dbo", "Hotels", nil)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestBuildSearch(t *testing.T) {
	model := testModel(t)
	vp := model.Vectors()[0]

	cmd, err := BuildSearch(model, "dbo", "Hotels", vp, "[1,2,3,4]", "", nil, 3, 2, false)
	require.NoError(t, err)

	sql := cmd.SQL()
	assert.Contains(t, sql, "VECTOR_DISTANCE('cosine', [Embedding], CAST(@Embedding_0 AS VECTOR(4))) AS [_score]")
	assert.Contains(t, sql, "ORDER BY [_score] ASC")
	assert.Contains(t, sql, "OFFSET 2 ROWS FETCH NEXT 3 ROWS ONLY;")
	assert.NotContains(t, sql, "WHERE")
	require.Len(t, cmd.Parameters(), 1)
	assert.Equal(t, "Embedding_0", cmd.Parameters()[0].Name)
	assert.Equal(t, "[1,2,3,4]", cmd.Parameters()[0].Value)
}

func TestBuildSearchDescendingForDotProduct(t *testing.T) {
	model := testModel(t)
	vp := model.Vectors()[0]
	vp.Distance = schema.DistanceDotProduct

	cmd, err := BuildSearch(model, "dbo", "Hotels", vp, "[1,2,3,4]", "", nil, 5, 0, false)
	require.NoError(t, err)
	assert.Contains(t, cmd.SQL(), "VECTOR_DISTANCE('dot',")
	assert.Contains(t, cmd.SQL(), "ORDER BY [_score] DESC")
}

func TestBuildSearchWithFilter(t *testing.T) {
	model := testModel(t)
	vp := model.Vectors()[0]
	where := "[Name] = @Name_1"
	params := []Parameter{{Name: "Name_1", Value: "Grand"}}

	cmd, err := BuildSearch(model, "dbo", "Hotels", vp, "[1,2,3,4]", where, params, 3, 0, true)
	require.NoError(t, err)
	assert.Contains(t, cmd.SQL(), "WHERE [Name] = @Name_1")
	require.Len(t, cmd.Parameters(), 2)
	assert.Equal(t, "Embedding_0", cmd.Parameters()[0].Name)
	assert.Equal(t, "Name_1", cmd.Parameters()[1].Name)
}

func TestBuildSearchValidation(t *testing.T) {
	model := testModel(t)
	vp := model.Vectors()[0]

	_, err := BuildSearch(model, "dbo", "Hotels", vp, "[1]", "", nil, 0, 0, false)
	assert.Error(t, err)
	_, err = BuildSearch(model, "dbo", "Hotels", vp, "[1]", "", nil, 3, -1, false)
	assert.Error(t, err)
}
