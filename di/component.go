package di

import (
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/gocrud/ioc/logging"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Component 组件标记。结构体嵌入 Component 后即可被容器扫描和管理。
//
// 嵌入字段的标签携带元数据：
//   - di:"name"       显式 bean 名称，为空时使用类型名
//   - scope:"prototype" 作用域，默认 singleton
//
// 示例：
//
//	type TestServiceA struct {
//		di.Component `scope:"prototype"`
//
//		C *TestServiceC `di:""`
//	}
type Component struct{}

var componentType = reflect.TypeOf(Component{})

// ConfigRoot 根配置，提供组件扫描路径。
type ConfigRoot interface {
	ComponentScan() []string
}

// ScanPaths 是最简单的 ConfigRoot。
//
//	c := di.New(di.ScanPaths{"github.com/gocrud/ioc/example/service"})
type ScanPaths []string

func (p ScanPaths) ComponentScan() []string { return p }

// Resolver 按名称解析 bean，解析过程感知循环依赖。
type Resolver interface {
	Resolve(name string) (any, error)
}

// Injectable 由需要显式装配依赖的组件实现。
// 在标签字段注入之后、bean 发布到单例池之前调用，
// 适用于未导出字段等反射无法赋值的场景。
type Injectable interface {
	InjectDependencies(r Resolver) error
}

// NormalizeName 将名称首字母转为大写。
// 注册与查找都经过它，两边保持一致；结果幂等。
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return cases.Upper(language.Und).String(string(r)) + name[size:]
}

// AliasName 将名称首字母转为小写，是 NormalizeName 的逆操作，
// 所以 GetBean(AliasName(name)) 总能找到 name。
// 不做驼峰切分：HTTPClient 的别名是 hTTPClient。
func AliasName(name string) string {
	name = strings.TrimSpace(name)
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return cases.Lower(language.Und).String(string(r)) + name[size:]
}

// typeBareName 返回类型去掉指针后的名称，例如 *TestServiceC -> TestServiceC。
func typeBareName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// structType 将 T 或 *T 统一为结构体类型，非结构体返回 nil。
func structType(t reflect.Type) reflect.Type {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// analyzeComponent 读取组件元数据并生成 BeanDefinition。
// 不是组件时返回 false；元数据不合法时记录警告并使用默认值。
func analyzeComponent(typ reflect.Type, logger logging.Logger) (BeanDefinition, bool) {
	st := structType(typ)
	if st == nil {
		return BeanDefinition{}, false
	}

	marker, ok := componentField(st)
	if !ok {
		return BeanDefinition{}, false
	}

	name := strings.TrimSpace(marker.Tag.Get("di"))
	if name == "" {
		name = st.Name()
	}
	name = NormalizeName(name)
	if name == "" {
		logger.Warn("anonymous component type skipped", logging.F("type", st.String()))
		return BeanDefinition{}, false
	}

	scope, err := ParseScope(marker.Tag.Get("scope"))
	if err != nil {
		logger.Warn("invalid scope metadata, falling back to singleton",
			logging.F("bean", name), logging.Err(err))
		scope = ScopeSingleton
	}

	return BeanDefinition{
		Name:   name,
		Type:   reflect.PointerTo(st),
		Scope:  scope,
		Schema: analyzeFields(st),
	}, true
}

func componentField(st reflect.Type) (reflect.StructField, bool) {
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if f.Anonymous && f.Type == componentType {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// analyzeFields 收集带 `di` 标签的依赖字段。
//
// 标签格式: "name,option"
//   - di:""           按字段类型名查找
//   - di:"beanName"   按显式名称查找
//   - di:"?" 或 di:",optional"  可选依赖，缺失时不报错
func analyzeFields(st reflect.Type) *InjectionSchema {
	schema := &InjectionSchema{}

	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		if field.Anonymous && field.Type == componentType {
			continue
		}
		tagValue, hasTag := field.Tag.Lookup("di")
		if !hasTag {
			continue
		}

		parts := strings.Split(tagValue, ",")
		name := strings.TrimSpace(parts[0])
		optional := false

		if name == "?" || name == "optional" {
			name = ""
			optional = true
		}
		for _, part := range parts[1:] {
			part = strings.TrimSpace(part)
			if part == "optional" || part == "?" {
				optional = true
			}
		}

		if name == "" {
			name = typeBareName(field.Type)
		}

		schema.Fields = append(schema.Fields, FieldInjection{
			Index:    i,
			Name:     field.Name,
			Type:     field.Type,
			BeanName: NormalizeName(name),
			Optional: optional,
			Exported: field.IsExported(),
		})
	}
	return schema
}
