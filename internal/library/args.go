package library

import (
	"math"
	"strconv"
	"strings"
)

// Arguments reach resolvers already coerced by the executor: ID values are
// strings, Int values are ints. The decoders below turn them into typed
// structs and reject anything the store cannot use.

type idArgs struct {
	ID int
}

func decodeIDArgs(args map[string]any) (idArgs, error) {
	id, err := requiredID(args, "id")
	if err != nil {
		return idArgs{}, err
	}
	return idArgs{ID: id}, nil
}

type createAuthorArgs struct {
	Name *string
	Age  *int
}

func decodeCreateAuthorArgs(args map[string]any) (createAuthorArgs, error) {
	var out createAuthorArgs
	var err error
	if out.Name, err = optionalString(args, "name"); err != nil {
		return createAuthorArgs{}, err
	}
	if out.Age, err = optionalInt(args, "age"); err != nil {
		return createAuthorArgs{}, err
	}
	return out, nil
}

type createBookArgs struct {
	Title    *string
	Genre    *string
	AuthorID int
}

func decodeCreateBookArgs(args map[string]any) (createBookArgs, error) {
	var out createBookArgs
	var err error
	if out.Title, err = optionalString(args, "title"); err != nil {
		return createBookArgs{}, err
	}
	if out.Genre, err = optionalString(args, "genre"); err != nil {
		return createBookArgs{}, err
	}
	if out.AuthorID, err = requiredID(args, "authorId"); err != nil {
		return createBookArgs{}, err
	}
	return out, nil
}

func requiredID(args map[string]any, name string) (int, error) {
	switch v := args[name].(type) {
	case nil:
		return 0, errorf(KindInvalidArgument, "argument %q is required", name)
	case int:
		return v, nil
	case string:
		id, ok := parseID(v)
		if !ok {
			return 0, errorf(KindInvalidArgument, "argument %q must be a numeric id, got %q", name, v)
		}
		return id, nil
	default:
		return 0, errorf(KindInvalidArgument, "argument %q must be a numeric id, got %T", name, v)
	}
}

// parseID reads an id from its string form. Surrounding whitespace is
// ignored and any number with an integral value is accepted, so " 1",
// "1.0" and "1e0" all name id 1.
func parseID(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if id, err := strconv.Atoi(s); err == nil {
		return id, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int(f), true
}

func optionalString(args map[string]any, name string) (*string, error) {
	switch v := args[name].(type) {
	case nil:
		return nil, nil
	case string:
		return &v, nil
	default:
		return nil, errorf(KindInvalidArgument, "argument %q must be a string, got %T", name, v)
	}
}

func optionalInt(args map[string]any, name string) (*int, error) {
	switch v := args[name].(type) {
	case nil:
		return nil, nil
	case int:
		return &v, nil
	default:
		return nil, errorf(KindInvalidArgument, "argument %q must be an integer, got %T", name, v)
	}
}
