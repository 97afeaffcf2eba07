package chart

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"roulette/internal/conf"

	"github.com/google/wire"
	jsoniter "github.com/json-iterator/go"
)

var ProviderSet = wire.NewSet(NewGenerator)

var chromeCache string

const OutputDir = "./roulette_charts"

// IGenerator 图表生成接口
type IGenerator interface {
	Generate(bars []Bar, expected float64, batchID, subtitle string, saveLocal bool) (*GenerateResult, error)
}

// Bar 柱状图一根柱子
type Bar struct {
	Label string  // 号码
	Value float64 // 出现次数
	Color string  // css 颜色
}

// GenerateResult 生成结果
type GenerateResult struct {
	HTMLContent string // HTML 内容
	FilePath    string // 文件路径（saveLocal=false 时为空）
}

// Generator 图表生成器
type Generator struct {
	outputDir string
}

// NewGenerator 创建图表生成器，未配置目录时使用默认目录
func NewGenerator(c *conf.Roulette) IGenerator {
	dir := c.GetChart().GetOutputDir()
	if dir == "" {
		dir = OutputDir
	}
	return &Generator{outputDir: dir}
}

// Generate 生成号码频率柱状图，expected 为均匀分布下的期望次数
// saveLocal: 是否保存本地文件（HTML/PNG）
func (g *Generator) Generate(bars []Bar, expected float64, batchID, subtitle string, saveLocal bool) (*GenerateResult, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("no data")
	}

	x, y, c := make([]string, len(bars)), make([]float64, len(bars)), make([]string, len(bars))
	yMax := expected
	for i, b := range bars {
		x[i], y[i], c[i] = b.Label, b.Value, b.Color
		if b.Value > yMax {
			yMax = b.Value
		}
	}

	xJ, _ := jsoniter.Marshal(x)
	yJ, _ := jsoniter.Marshal(y)
	cJ, _ := jsoniter.Marshal(c)

	html := fmt.Sprintf(chartTpl, batchID, batchID, subtitle, string(xJ), string(yJ), string(cJ), expected, yMax*1.15, batchID, subtitle)

	result := &GenerateResult{
		HTMLContent: html,
	}

	if !saveLocal {
		return result, nil
	}

	// 保存本地文件
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return nil, err
	}

	path := filepath.Join(g.outputDir, fmt.Sprintf("%s.html", batchID))
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return nil, err
	}

	renderPNG(path)
	result.FilePath = path
	return result, nil
}

func toPng(html string) string {
	return strings.TrimSuffix(html, ".html") + ".png"
}

func renderPNG(htmlPath string) {
	chrome := findChrome()
	if chrome == "" {
		return
	}
	absH, _ := filepath.Abs(htmlPath)
	absP, _ := filepath.Abs(toPng(htmlPath))
	args := []string{
		"--headless=new", "--disable-gpu", "--hide-scrollbars",
		"--window-size=1720,920", "--force-device-scale-factor=2",
		"--run-all-compositor-stages-before-draw", "--virtual-time-budget=8000",
		"--disable-web-security", "--no-sandbox",
		"--screenshot=" + absP, "file://" + absH,
	}
	if exec.Command(chrome, args...).Run() != nil {
		args[0] = "--headless"
		_ = exec.Command(chrome, args...).Run()
	}
}

func findChrome() string {
	if chromeCache != "" {
		return chromeCache
	}
	for _, p := range []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
	} {
		if _, err := os.Stat(p); err == nil {
			chromeCache = p
			return p
		}
	}
	for _, name := range []string{"google-chrome", "chromium"} {
		if out, _ := exec.Command("which", name).Output(); len(out) > 0 {
			chromeCache = strings.TrimSpace(string(out))
			return chromeCache
		}
	}
	return ""
}

const chartTpl = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>轮盘号码分布 - %s</title>
<script src="https://cdn.plot.ly/plotly-2.27.0.min.js"></script>
<style>body{font-family:'Microsoft YaHei';margin:0;padding:20px;background:#f5f5f5}.container{background:#fff;padding:20px;border-radius:8px;box-shadow:0 2px 4px rgba(0,0,0,.1)}</style>
</head>
<body>
<div class="container"><h1>Batch: %s, %s</h1><div id="chart"></div></div>
<script>
var xData=%s,yData=%s,colors=%s,expected=%f,yMax=%f;
var bars={x:xData,y:yData,type:'bar',name:'出现次数',marker:{color:colors,line:{color:'#333',width:1}},hovertemplate:'号码 %%{x}<br>次数 %%{y}<extra></extra>'};
var exp={x:[xData[0],xData[xData.length-1]],y:[expected,expected],mode:'lines',name:'期望',line:{color:'#1f77b4',dash:'dashdot',width:2}};
var layout={title:'Batch: %s, %s',
  xaxis:{title:'号码（轮盘物理顺序）',type:'category',tickangle:0,tickfont:{size:12,color:'#000'},automargin:true},
  yaxis:{title:'次数',range:[0,yMax],showgrid:true},
  font:{size:14},plot_bgcolor:'#E8F8FF',height:800,width:1600,bargap:0.15,hovermode:'closest',
  legend:{x:0.99,y:0.99,xanchor:'right'}};
Plotly.newPlot('chart',[bars,exp],layout,{displayModeBar:false});
</script>
</body>
</html>`
