package svg2json

import (
	"regexp"
	"strconv"
	"strings"

	cstypes "colorsplitter/type"
)

var (
	pathToken   = regexp.MustCompile(`-?[0-9]*\.?[0-9]+(?:e[-+]?\d+)?|[MLHVCSQTAZmlhvcsqtaz]|[\s,]+`)
	pathCommand = regexp.MustCompile(`^[MLHVCSQTAZmlhvcsqtaz]$`)
)

// 每个命令一组参数的个数
func groupSize(cmd string) int {
	switch strings.ToUpper(cmd) {
	case "H", "V":
		return 1
	case "M", "L", "T":
		return 2
	case "S", "Q":
		return 4
	case "C":
		return 6
	case "A":
		return 7
	default:
		return 0
	}
}

// FlipPath 沿水平线翻转路径的 y 坐标：绝对坐标 y -> height - y，相对坐标 y -> -y。
// 绘图仪和切割机多用 y 轴向上的坐标系，用这个在两种约定之间转换。
func FlipPath(d string, height float64) string {
	tokens := pathToken.FindAllString(d, -1)

	var output []string
	var command string
	var params []float64

	processGroup := func(group []float64, isAbs bool) []float64 {
		if len(group) == 0 {
			return group
		}
		switch command {
		case "V":
			return []float64{height - group[0]}
		case "v":
			return []float64{0 - group[0]}
		case "H", "h":
			return group
		case "A", "a":
			res := append([]float64{}, group...)
			if len(res) == 7 {
				// 镜像后旋转角和扫描方向都取反
				res[2] = 0 - res[2]
				res[4] = 1 - res[4]
				if isAbs {
					res[6] = height - res[6]
				} else {
					res[6] = 0 - res[6]
				}
			}
			return res
		default:
			res := make([]float64, len(group))
			for i, val := range group {
				if i%2 == 1 {
					if isAbs {
						res[i] = height - val
					} else {
						res[i] = 0 - val
					}
				} else {
					res[i] = val
				}
			}
			return res
		}
	}

	flush := func() {
		size := groupSize(command)
		if size == 0 {
			size = len(params)
		}
		for i := 0; i < len(params); i += size {
			group := params[i:min(i+size, len(params))]
			processed := processGroup(group, command == strings.ToUpper(command))
			strs := make([]string, len(processed))
			for j, v := range processed {
				strs[j] = strconv.FormatFloat(v, 'f', -1, 64)
			}
			output = append(output, strings.Join(strs, " "))
		}
		params = nil
	}

	for _, token := range tokens {
		t := strings.TrimSpace(token)
		if t == "" || t == "," {
			continue
		}
		if pathCommand.MatchString(t) {
			if len(params) > 0 {
				flush()
			}
			command = t
			output = append(output, t)
		} else {
			num, _ := strconv.ParseFloat(t, 64)
			params = append(params, num)
		}
	}
	if len(params) > 0 {
		flush()
	}

	return strings.Join(output, " ")
}

// FlipFrame 翻转一帧清单里所有图层的路径
func FlipFrame(fd cstypes.FrameData, height float64) cstypes.FrameData {
	out := fd
	out.Layers = make([]cstypes.LayerData, len(fd.Layers))
	for i, l := range fd.Layers {
		l.PathData = FlipPath(l.PathData, height)
		out.Layers[i] = l
	}
	return out
}
