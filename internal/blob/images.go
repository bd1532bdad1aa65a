package blob

import (
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var supportedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".avif": true,
	".svg":  true,
}

var (
	trailingNumberRe = regexp.MustCompile(`-(\d+)(?:\.[^/.]+)?$`)
	slugNumberRe     = regexp.MustCompile(`^(.+)-(\d+)$`)
)

// IsSupportedImageFormat reports whether filename has an image extension the site renders.
func IsSupportedImageFormat(filename string) bool {
	return supportedImageExtensions[strings.ToLower(path.Ext(filename))]
}

// baseName returns the last path segment of a pathname.
func baseName(pathname string) string {
	if i := strings.LastIndex(pathname, "/"); i >= 0 {
		return pathname[i+1:]
	}
	return pathname
}

// stripExtension removes the final extension, if any.
func stripExtension(filename string) string {
	ext := path.Ext(filename)
	return strings.TrimSuffix(filename, ext)
}

// imageNumber extracts the trailing -N of a pathname. Missing numbers are 0.
func imageNumber(pathname string) int {
	m := trailingNumberRe.FindStringSubmatch(baseName(pathname))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func sortByNumber(objects []Object) {
	sort.SliceStable(objects, func(i, j int) bool {
		return imageNumber(objects[i].Pathname) < imageNumber(objects[j].Pathname)
	})
}

func urls(objects []Object) []string {
	out := make([]string, 0, len(objects))
	for _, o := range objects {
		out = append(out, o.URL)
	}
	return out
}

// ProjectImages returns the URLs of the images belonging to slug, ordered by image number.
func ProjectImages(objects []Object, slug string) []string {
	prefix := slug + "-"
	matched := make([]Object, 0)
	for _, o := range objects {
		name := baseName(o.Pathname)
		if !IsSupportedImageFormat(name) {
			continue
		}
		if strings.HasPrefix(stripExtension(name), prefix) {
			matched = append(matched, o)
		}
	}
	sortByNumber(matched)
	return urls(matched)
}

// GroupProjectImages groups every numbered image under its slug.
// Files without a trailing -N are skipped.
func GroupProjectImages(objects []Object) map[string][]string {
	groups := make(map[string][]Object)
	for _, o := range objects {
		name := baseName(o.Pathname)
		if !IsSupportedImageFormat(name) {
			continue
		}
		m := slugNumberRe.FindStringSubmatch(stripExtension(name))
		if m == nil {
			continue
		}
		groups[m[1]] = append(groups[m[1]], o)
	}

	out := make(map[string][]string, len(groups))
	for slug, objs := range groups {
		sortByNumber(objs)
		out[slug] = urls(objs)
	}
	return out
}
