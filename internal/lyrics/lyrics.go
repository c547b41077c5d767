package lyrics

import (
	"bufio"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type Line struct {
	Time float64
	Text string
}

var (
	lineStampRe = regexp.MustCompile(`\[(\d{2}):(\d{2})(?:\.(\d{1,3}))?\](.*)`)
	anyStampRe  = regexp.MustCompile(`\[\d{1,3}:\d{2}(?:[.:]\d{1,3})?\]`)
	wordStampRe = regexp.MustCompile(`<\d{1,3}:\d{2}(?:[.:]\d{1,3})?>`)
	// [ar:Artist] [ti:Title] [offset:+100] ...
	tagLineRe = regexp.MustCompile(`^\[[a-zA-Z#]+:[^\]]*\]$`)
	spacesRe  = regexp.MustCompile(`\s{2,}`)
)

// ParseLRC 解析LRC歌词，返回按时间排序的行
func ParseLRC(lrc string) []Line {
	scanner := bufio.NewScanner(strings.NewReader(lrc))
	var result []Line

	for scanner.Scan() {
		line := scanner.Text()
		matches := lineStampRe.FindAllStringSubmatch(line, -1)
		for _, match := range matches {
			min, _ := strconv.Atoi(match[1])
			sec, _ := strconv.Atoi(match[2])
			ms := 0
			if match[3] != "" {
				msStr := match[3]
				ms, _ = strconv.Atoi(msStr)
				// .1 => 100ms, .49 => 490ms, .490 => 490ms
				switch len(msStr) {
				case 1:
					ms *= 100
				case 2:
					ms *= 10
				}
			}
			text := strings.TrimSpace(match[4])
			timestamp := float64(min*60+sec) + float64(ms)/1000
			result = append(result, Line{Time: timestamp, Text: text})
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Time < result[j].Time })
	return result
}

// IsSynced reports whether text carries at least one line timestamp.
func IsSynced(text string) bool {
	return anyStampRe.MatchString(text)
}

// Plain strips line stamps, word stamps and LRC tag lines. Plain input is
// returned with only surrounding whitespace trimmed.
func Plain(text string) string {
	if !IsSynced(text) && !wordStampRe.MatchString(text) {
		return strings.TrimSpace(text)
	}

	var out []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if tagLineRe.MatchString(line) {
			continue
		}
		line = anyStampRe.ReplaceAllString(line, "")
		line = wordStampRe.ReplaceAllString(line, " ")
		line = spacesRe.ReplaceAllString(line, " ")
		out = append(out, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// FormatTimestamp renders seconds as mm:ss.xx.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	cs := int(seconds*100 + 0.5)
	return fmt.Sprintf("%02d:%02d.%02d", cs/6000, (cs/100)%60, cs%100)
}

// Word is one timed token of an enhanced line.
type Word struct {
	Start float64
	Text  string
}

// EnhancedLine renders a word-timed line in the enhanced LRC layout:
//
//	[00:08.69] <00:08.69> I <00:08.75> got <00:09.02> my <00:09.35>
func EnhancedLine(start float64, words []Word, end float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", FormatTimestamp(start))
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, " <%s> %s", FormatTimestamp(w.Start), text)
	}
	fmt.Fprintf(&b, " <%s>", FormatTimestamp(end))
	return b.String()
}
