package chart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"roulette/internal/conf"
)

func TestGenerator(t *testing.T) {
	bars := []Bar{
		{Label: "0", Value: 3, Color: "#0a0"},
		{Label: "32", Value: 5, Color: "#c00"},
		{Label: "15", Value: 4, Color: "#111"},
	}
	g := NewGenerator(&conf.Roulette{Chart: &conf.Roulette_Chart{OutputDir: t.TempDir()}})

	r, err := g.Generate(bars, 4, "20260101-1", "3 spins", false)
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	if r.FilePath != "" {
		t.Errorf("saveLocal=false 不应写文件")
	}
	if !strings.Contains(r.HTMLContent, `["0","32","15"]`) {
		t.Errorf("HTML 缺少号码数据")
	}
	if strings.Contains(r.HTMLContent, "%!") {
		t.Errorf("模板参数个数不匹配")
	}

	if _, err := g.Generate(nil, 0, "x", "", false); err == nil {
		t.Errorf("空数据应报错")
	}
}

func TestGeneratorSaveLocal(t *testing.T) {
	dir := t.TempDir()
	g := &Generator{outputDir: dir}
	r, err := g.Generate([]Bar{{Label: "0", Value: 1}}, 1, "b-local", "", true)
	if err != nil {
		t.Fatal(err)
	}
	if r.FilePath != filepath.Join(dir, "b-local.html") {
		t.Errorf("路径 %s", r.FilePath)
	}
	if _, err := os.Stat(r.FilePath); err != nil {
		t.Errorf("文件未生成: %v", err)
	}
	t.Logf("chart saved: %s", r.FilePath)
}

func TestNewGeneratorDefaultDir(t *testing.T) {
	g := NewGenerator(nil).(*Generator)
	if g.outputDir != OutputDir {
		t.Errorf("默认目录 %s", g.outputDir)
	}
}
