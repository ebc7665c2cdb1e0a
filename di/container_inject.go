package di

import (
	"errors"
	"fmt"
	"reflect"
)

// Inject 为容器外部创建的结构体注入 `di` 标签字段。
// 目标本身不会注册到容器。与启动阶段不同，任何字段失败都会返回错误。
//
//	var h struct {
//		A *service.TestServiceA `di:""`
//	}
//	err := c.Inject(&h)
func (c *Container) Inject(target any) error {
	targetVal := reflect.ValueOf(target)
	if targetVal.Kind() != reflect.Pointer || targetVal.IsNil() {
		return fmt.Errorf("di: Inject 需要非空指针，得到 %T", target)
	}
	elem := targetVal.Elem()
	if elem.Kind() != reflect.Struct {
		return fmt.Errorf("di: Inject 需要指向结构体的指针，得到 %T", target)
	}

	schema := analyzeFields(elem.Type())
	bean := elem.Type().String()

	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, field := range schema.Fields {
		if !field.Exported {
			errs = append(errs, &FieldInjectionError{
				Bean: bean, Field: field.Name, Dependency: field.BeanName,
				Cause: errors.New("未导出字段无法通过反射赋值"),
			})
			continue
		}

		dep, err := c.resolver.getSingleton(field.BeanName)
		if err != nil {
			if field.Optional && errors.Is(err, ErrDefinitionNotFound) {
				continue
			}
			errs = append(errs, &FieldInjectionError{Bean: bean, Field: field.Name, Dependency: field.BeanName, Cause: err})
			continue
		}

		depVal := reflect.ValueOf(dep)
		if !depVal.Type().AssignableTo(field.Type) {
			errs = append(errs, &FieldInjectionError{
				Bean: bean, Field: field.Name, Dependency: field.BeanName,
				Cause: fmt.Errorf("%v 无法赋值给 %v", depVal.Type(), field.Type),
			})
			continue
		}
		elem.Field(field.Index).Set(depVal)
	}
	return errors.Join(errs...)
}

// MustInject 同 Inject，失败时 panic。
func (c *Container) MustInject(target any) {
	if err := c.Inject(target); err != nil {
		panic(err)
	}
}
