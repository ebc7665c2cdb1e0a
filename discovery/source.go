package discovery

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/gocrud/ioc/di"
	"golang.org/x/mod/modfile"
	"golang.org/x/sync/errgroup"
)

// diImportPath 组件标记所在的包。
const diImportPath = "github.com/gocrud/ioc/di"

// SourceScanner 通过解析源码发现组件：
// 找出嵌入 di.Component 的结构体，再到 Catalog 中取得对应的 reflect.Type。
// 源码中存在但未登记的类型在 Load 时失败，只影响该候选项。
type SourceScanner struct {
	// Dir 用于定位 go.mod 的起始目录，为空时使用当前工作目录
	Dir     string
	Catalog *Catalog
}

// NewSourceScanner 创建源码扫描器，catalog 为 nil 时使用 Default。
func NewSourceScanner(dir string, catalog *Catalog) *SourceScanner {
	if catalog == nil {
		catalog = Default
	}
	return &SourceScanner{Dir: dir, Catalog: catalog}
}

// module go.mod 所在目录与模块路径。
type module struct {
	root string
	path string
}

// Discover 实现 di.Discoverer。
func (s *SourceScanner) Discover(scanPath string) ([]di.Candidate, error) {
	fail := func(err error) ([]di.Candidate, error) {
		return nil, &di.DiscoveryError{ScanPath: scanPath, Cause: err}
	}

	mod, err := findModule(s.Dir)
	if err != nil {
		return fail(err)
	}

	importPath, recursive := strings.CutSuffix(strings.TrimSpace(scanPath), recursiveSuffix)
	// 单独的 ... 表示整个模块，与 Catalog 一致
	if importPath == "..." {
		importPath, recursive = mod.path, true
	}
	dir, err := mod.dirOf(importPath)
	if err != nil {
		return fail(err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fail(err)
	}
	if !info.IsDir() {
		return fail(fmt.Errorf("%s 不是目录", dir))
	}

	files, err := goFiles(dir, recursive)
	if err != nil {
		return fail(err)
	}

	// 并发解析，结果按文件下标写入，保证顺序稳定
	results := make([][]di.Candidate, len(files))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			results[i] = s.scanFile(scanPath, mod, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fail(err)
	}

	candidates := slices.Concat(results...)
	slices.SortStableFunc(candidates, func(a, b di.Candidate) int {
		return strings.Compare(a.Name, b.Name)
	})
	return candidates, nil
}

// scanFile 解析单个文件。解析失败的文件变成一个加载必然失败的候选项。
func (s *SourceScanner) scanFile(scanPath string, mod module, file string) []di.Candidate {
	//nolint:gosec
	data, err := os.ReadFile(file)
	if err != nil {
		return []di.Candidate{failedCandidate(scanPath, file, err)}
	}

	// 快速检查：没有引用 di 包的文件直接跳过
	if !strings.Contains(string(data), strconv.Quote(diImportPath)) {
		return nil
	}

	f, err := parser.ParseFile(token.NewFileSet(), file, data, parser.SkipObjectResolution)
	if err != nil {
		return []di.Candidate{failedCandidate(scanPath, file, fmt.Errorf("解析文件失败: %w", err))}
	}

	marker, ok := markerName(f)
	if !ok {
		return nil
	}

	pkgPath := mod.importPathOf(filepath.Dir(file))
	var out []di.Candidate
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok || ts.TypeParams != nil {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok || !embedsMarker(st, marker) {
				continue
			}
			out = append(out, s.candidate(scanPath, pkgPath, ts.Name.Name))
		}
	}
	return out
}

func (s *SourceScanner) candidate(scanPath, pkgPath, typeName string) di.Candidate {
	name := pkgPath + "." + typeName
	return di.Candidate{
		Name: name,
		Load: func() (reflect.Type, error) {
			if t, ok := s.Catalog.Lookup(pkgPath, typeName); ok {
				return t, nil
			}
			return nil, &di.DiscoveryError{
				ScanPath:  scanPath,
				Candidate: name,
				Cause:     fmt.Errorf("%w: 未通过 discovery.Register 登记", di.ErrTypeNotLoaded),
			}
		},
	}
}

func failedCandidate(scanPath, file string, err error) di.Candidate {
	return di.Candidate{
		Name: file,
		Load: func() (reflect.Type, error) {
			return nil, &di.DiscoveryError{ScanPath: scanPath, Candidate: file, Cause: err}
		},
	}
}

// markerName 返回文件中引用 di.Component 的写法。
// 点导入时为 "Component"，否则为 "<别名>.Component"。
func markerName(f *ast.File) (string, bool) {
	for _, imp := range f.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil || p != diImportPath {
			continue
		}
		local := path.Base(diImportPath)
		if imp.Name != nil {
			local = imp.Name.Name
		}
		switch local {
		case "_":
			return "", false
		case ".":
			return "Component", true
		}
		return local + ".Component", true
	}
	return "", false
}

func embedsMarker(st *ast.StructType, marker string) bool {
	for _, field := range st.Fields.List {
		if len(field.Names) != 0 {
			continue
		}
		switch t := field.Type.(type) {
		case *ast.SelectorExpr:
			if x, ok := t.X.(*ast.Ident); ok && x.Name+"."+t.Sel.Name == marker {
				return true
			}
		case *ast.Ident:
			if t.Name == marker {
				return true
			}
		}
	}
	return false
}

// goFiles 列出目录下的非测试 Go 文件。
// 递归时跳过 vendor、testdata、隐藏目录、以 _ 开头的目录以及嵌套模块。
func goFiles(dir string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == dir {
				return nil
			}
			if !recursive || skipDir(p, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go") {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func skipDir(p, name string) bool {
	if name == "vendor" || name == "testdata" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	_, err := os.Stat(filepath.Join(p, "go.mod"))
	return err == nil
}

var (
	modCache   sync.Map // 起始目录 -> module
	errNoGoMod = errors.New("未找到 go.mod")
)

// findModule 从 dir 向上查找 go.mod 并解析模块路径。
func findModule(dir string) (module, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return module{}, err
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return module{}, err
	}
	if m, ok := modCache.Load(dir); ok {
		return m.(module), nil
	}

	for d := dir; ; {
		gomod := filepath.Join(d, "go.mod")
		//nolint:gosec
		data, err := os.ReadFile(gomod)
		if err == nil {
			modPath := modfile.ModulePath(data)
			if modPath == "" {
				return module{}, fmt.Errorf("%s 中缺少 module 声明", gomod)
			}
			m := module{root: d, path: modPath}
			modCache.Store(dir, m)
			return m, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return module{}, fmt.Errorf("读取 %s 失败: %w", gomod, err)
		}

		parent := filepath.Dir(d)
		if parent == d {
			return module{}, fmt.Errorf("%w: %s", errNoGoMod, dir)
		}
		d = parent
	}
}

// dirOf 把导入路径映射到模块内的目录。
func (m module) dirOf(importPath string) (string, error) {
	if importPath == m.path {
		return m.root, nil
	}
	rel, ok := strings.CutPrefix(importPath, m.path+"/")
	if !ok {
		return "", fmt.Errorf("导入路径 %s 不属于模块 %s", importPath, m.path)
	}
	return filepath.Join(m.root, filepath.FromSlash(rel)), nil
}

func (m module) importPathOf(dir string) string {
	rel, err := filepath.Rel(m.root, dir)
	if err != nil || rel == "." {
		return m.path
	}
	return m.path + "/" + filepath.ToSlash(rel)
}
