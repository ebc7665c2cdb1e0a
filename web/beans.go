package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/ioc/di"
	"github.com/stoewer/go-strcase"
)

// BeanInfo bean 定义的对外视图
type BeanInfo struct {
	Name         string       `json:"name"`
	Alias        string       `json:"alias"` // di.AliasName，GetBean 同样接受
	Type         string       `json:"type"`
	Scope        di.ScopeType `json:"scope"`
	State        di.BeanState `json:"state"`
	Dependencies []string     `json:"dependencies"`
}

// Describe 按注册顺序列出容器中的 bean
func Describe(c *di.Container) []BeanInfo {
	names := c.BeanNames()
	out := make([]BeanInfo, 0, len(names))
	for _, name := range names {
		if info, ok := describe(c, name); ok {
			out = append(out, info)
		}
	}
	return out
}

func describe(c *di.Container, name string) (BeanInfo, bool) {
	def, ok := c.Definition(name)
	if !ok {
		return BeanInfo{}, false
	}
	deps := def.Dependencies()
	if deps == nil {
		deps = []string{}
	}
	return BeanInfo{
		Name:         def.Name,
		Alias:        di.AliasName(def.Name),
		Type:         def.Type.String(),
		Scope:        def.Scope,
		State:        c.State(def.Name),
		Dependencies: deps,
	}, true
}

// BeansController 容器检查接口
//
//	GET /beans
//	GET /beans/:name
//	GET /beans/:name/dependencies
//	GET /cycles
type BeansController struct {
	container *di.Container
}

func NewBeansController(container *di.Container) *BeansController {
	return &BeansController{container: container}
}

func (ctrl *BeansController) MountRoutes(router gin.IRouter) {
	router.GET("/beans", ctrl.list)
	router.GET("/beans/:name", ctrl.get)
	router.GET("/beans/:name/dependencies", ctrl.dependencies)
	router.GET("/cycles", ctrl.cycles)
}

func (ctrl *BeansController) list(c *gin.Context) {
	c.JSON(http.StatusOK, Describe(ctrl.container))
}

// beanName 解析路径参数，bean 名称之外还接受 test-service-a、test_service_a 这样的写法
func (ctrl *BeansController) beanName(c *gin.Context) string {
	name := c.Param("name")
	if _, ok := ctrl.container.Definition(name); ok {
		return name
	}
	if camel := strcase.UpperCamelCase(name); camel != "" {
		if _, ok := ctrl.container.Definition(camel); ok {
			return camel
		}
	}
	return name
}

func (ctrl *BeansController) get(c *gin.Context) {
	info, ok := describe(ctrl.container, ctrl.beanName(c))
	if !ok {
		notFound(c, c.Param("name"))
		return
	}
	c.JSON(http.StatusOK, info)
}

func (ctrl *BeansController) dependencies(c *gin.Context) {
	deps, err := ctrl.container.Dependencies(ctrl.beanName(c))
	if errors.Is(err, di.ErrDefinitionNotFound) {
		notFound(c, c.Param("name"))
		return
	}
	if deps == nil {
		deps = []string{}
	}
	c.JSON(http.StatusOK, deps)
}

func (ctrl *BeansController) cycles(c *gin.Context) {
	cycles := ctrl.container.Cycles()
	if cycles == nil {
		cycles = []di.Cycle{}
	}
	c.JSON(http.StatusOK, cycles)
}

func notFound(c *gin.Context, name string) {
	c.JSON(http.StatusNotFound, gin.H{"error": "bean not found: " + di.NormalizeName(name)})
}
