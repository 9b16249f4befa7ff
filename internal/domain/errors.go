package domain

import "errors"

var (
	// ErrAlreadySubmitted is returned when the (user, test) pair already has a result.
	ErrAlreadySubmitted = errors.New("test already submitted by this user")
	// ErrTestNotFound indicates the test definition could not be loaded.
	ErrTestNotFound = errors.New("test not found")
	// ErrUnknownQuestion marks a submitted answer whose question is not part of the test.
	ErrUnknownQuestion = errors.New("Question not found")
	// ErrUserNotInRanking is returned when a user has no entry in the global ranking.
	ErrUserNotInRanking = errors.New("user not found in ranking list")
	// ErrUserNotFound indicates the user id does not resolve to a user.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when the username or email is taken.
	ErrUserExists = errors.New("user with this email or username already exists")
	// ErrInvalidUser indicates missing or malformed user fields.
	ErrInvalidUser = errors.New("invalid user")
	// ErrInvalidTest indicates a test definition failed validation.
	ErrInvalidTest = errors.New("invalid test definition")
	// ErrInvalidQuestionType indicates an unknown question type name.
	ErrInvalidQuestionType = errors.New("invalid question type")
)
