package util

import "errors"

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrEmailRegistered  = errors.New("该邮箱已被注册")
	ErrInvalidPassword  = errors.New("邮箱或密码错误")
	ErrPermissionDenied = errors.New("permission denied")

	ErrTopicRequired   = errors.New("topic is required")
	ErrMessageRequired = errors.New("message is required")
	ErrSessionNotFound = errors.New("learning session not found")
	ErrNoActivePlan    = errors.New("no active learning plan")
)
