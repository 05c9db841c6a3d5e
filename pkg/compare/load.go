package compare

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/abworrall/hdr-compare/pkg/hdrerr"
	"github.com/abworrall/hdr-compare/pkg/radiance"
)

// A Job is a configuration plus the radiance files named on the command line.
type Job struct {
	Config
	Inputs []string
}

func NewJob() Job {
	return Job{Config: NewConfig()}
}

// LoadFilesAndDirs walks the args: directories are recursed into, YAML files
// replace the configuration, and float radiance files are queued as inputs.
// Anything else is ignored.
func (j *Job)LoadFilesAndDirs(args ...string) (error) {
	for _, arg := range args {
		item, err := os.Stat(arg)

		switch {

		case err != nil:
			return fmt.Errorf("load %s: %v", arg, err)

		case item.IsDir():
			contents, err := ioutil.ReadDir(arg)
			if err != nil {
				return fmt.Errorf("readdir %s: %v", arg, err)
			}
			for _, content := range contents {
				if err := j.LoadFilesAndDirs(filepath.Join(arg, content.Name())); err != nil {
					return fmt.Errorf("load %s: %v", arg, err)
				}
			}

		default:
			if err := j.loadFile(arg); err != nil {
				return fmt.Errorf("loadfile %s: %v", arg, err)
			}
		}
	}

	return nil
}

func (j *Job)loadFile(filename string) error {
	if strings.ToLower(filepath.Ext(filename)) == ".yaml" {
		cfg, err := LoadConfig(filename)
		if err != nil {
			return fmt.Errorf("Loading %s as config YAML failed: %v", filename, err)
		}
		j.Config = cfg
		log.Printf("Loaded base configuration from %s\n", filename)
		return nil
	}

	if format, err := radiance.FormatFromPath(filename); err == nil && format.IsFloat() {
		j.Inputs = append(j.Inputs, filename)
	}
	return nil
}

// VariantPath is where the render for a variant lives: <dir>/<prefix>.<variant>.hdr
func (c Config)VariantPath(variant string) string {
	return filepath.Join(c.InputDir, c.Prefix + "." + variant + ".hdr")
}

// VariantName recovers the variant from a path like scene.bpt.hdr. A file
// without a second dot is named by its basename.
func VariantName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i+1:]
	}
	return base
}

var tableFileRegexp = regexp.MustCompile(`^s([0-9]+)t([0-9]+)\.hdr$`)

// SubpathKey names one cell of a path length table.
type SubpathKey struct {
	S, T int
}

// SubpathFilename is the sNNtNN.hdr name for s and t.
func SubpathFilename(s, t int) string {
	return fmt.Sprintf("s%02dt%02d.hdr", s, t)
}

// ScanSubpathFiles finds the sNNtNN.hdr files in dir, returning them keyed
// by (s,t) along with the largest s and t seen.
func ScanSubpathFiles(dir string) (map[SubpathKey]string, int, int, error) {
	contents, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("readdir %s: %v", dir, err)
	}

	files := map[SubpathKey]string{}
	maxS, maxT := 0, 0
	for _, content := range contents {
		m := tableFileRegexp.FindStringSubmatch(content.Name())
		if m == nil || content.IsDir() {
			continue
		}
		s, errS := strconv.Atoi(m[1])
		t, errT := strconv.Atoi(m[2])
		if errS != nil || errT != nil {
			return nil, 0, 0, hdrerr.Invalidf("'%s': s or t out of range", content.Name())
		}
		key := SubpathKey{s, t}
		path := filepath.Join(dir, content.Name())
		if prev, exists := files[key]; exists {
			return nil, 0, 0, hdrerr.Invalidf("'%s' and '%s' are both s=%d, t=%d", prev, path, s, t)
		}
		files[key] = path
		if s > maxS { maxS = s }
		if t > maxT { maxT = t }
	}

	if len(files) == 0 {
		return nil, 0, 0, hdrerr.Invalidf("no sNNtNN.hdr files in %s", dir)
	}
	return files, maxS, maxT, nil
}

// sortedKeys orders keys by s, then t.
func sortedKeys(files map[SubpathKey]string) []SubpathKey {
	keys := []SubpathKey{}
	for k := range files {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].S != keys[j].S {
			return keys[i].S < keys[j].S
		}
		return keys[i].T < keys[j].T
	})
	return keys
}
