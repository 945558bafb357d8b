package keywords

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FlagsOnly(t *testing.T) {
	kws, err := Load([]string{"中标", "成交，结果"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"中标", "成交", "结果"}, kws)
}

func TestLoad_FileMergedAfterFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kw.txt")
	content := "# 注释行\n服务器采购\n中标, 办公设备\n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	kws, err := Load([]string{"中标"}, path)
	require.NoError(t, err)
	// 命令行在前，文件在后，重复的“中标”只保留首次出现
	assert.Equal(t, []string{"中标", "服务器采购", "办公设备"}, kws)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestLoad_Empty(t *testing.T) {
	kws, err := Load(nil, "")
	require.NoError(t, err)
	assert.Empty(t, kws)
}
