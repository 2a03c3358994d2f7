package mapsite

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

var errMissingField = errors.New("required field is missing")

func decodeSubscriptionStatus(data []byte) (*SubscriptionStatus, error) {
	const endpoint = "subscription"

	var (
		s         SubscriptionStatus
		hasActive bool
	)

	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "isActive":
			v, err := d.Bool()
			if err != nil {
				return &SchemaError{Endpoint: endpoint, Field: key, Err: err}
			}
			s.IsActive = v
			hasActive = true
		case "isLifetime":
			v, err := optBool(d)
			if err != nil {
				return &SchemaError{Endpoint: endpoint, Field: key, Err: err}
			}
			s.IsLifetime = v
		case "expiresAt":
			v, err := optInt64(d)
			if err != nil {
				return &SchemaError{Endpoint: endpoint, Field: key, Err: err}
			}
			s.ExpiresAt = v
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return nil, asSchemaError(endpoint, err)
	}
	if !hasActive {
		return nil, &SchemaError{Endpoint: endpoint, Field: "isActive", Err: errMissingField}
	}

	return &s, nil
}

func decodeUserByHash(data []byte) (*UserByHash, error) {
	const endpoint = "users/by-hash"

	var u UserByHash

	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "userId":
			v, err := optScalar(d)
			if err != nil {
				return &SchemaError{Endpoint: endpoint, Field: key, Err: err}
			}
			u.UserID = v
		case "hash":
			v, err := optScalar(d)
			if err != nil {
				return &SchemaError{Endpoint: endpoint, Field: key, Err: err}
			}
			u.Hash = v
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return nil, asSchemaError(endpoint, err)
	}

	return &u, nil
}

func encodeLinkRequest(platform string, req LinkRequest) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("startParam")
	e.Str(req.StartParam)
	e.FieldStart(platform + "UserId")
	e.Int64(req.UserID)
	e.FieldStart(platform + "Username")
	if req.Username == "" {
		e.Null()
	} else {
		e.Str(req.Username)
	}
	e.ObjEnd()
	return e.Bytes()
}

func encodeActivateRequest(platform string, req ActivateRequest) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart(platform + "UserId")
	e.Int64(req.UserID)
	e.FieldStart("durationDays")
	e.Int(req.DurationDays)
	if req.Hash != "" {
		e.FieldStart("hash")
		e.Str(req.Hash)
	}
	if req.SubscriptionType != "" {
		e.FieldStart("subscriptionType")
		e.Str(req.SubscriptionType)
	}
	e.ObjEnd()
	return e.Bytes()
}

func optBool(d *jx.Decoder) (bool, error) {
	if d.Next() == jx.Null {
		return false, d.Null()
	}
	return d.Bool()
}

// optInt64 accepts integers and integral floats (some JSON encoders emit
// epoch millis as 1.7e12).
func optInt64(d *jx.Decoder) (*int64, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	n, err := d.Num()
	if err != nil {
		return nil, err
	}
	if n.IsInt() {
		v, err := n.Int64()
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, err
	}
	v := int64(f)
	return &v, nil
}

// optScalar reads a string or a number as text; null yields "".
func optScalar(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.Null:
		return "", d.Null()
	case jx.String:
		return d.Str()
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return "", err
		}
		return n.String(), nil
	default:
		return "", errors.Errorf("unexpected %s", d.Next())
	}
}

func asSchemaError(endpoint string, err error) error {
	var se *SchemaError
	if errors.As(err, &se) {
		return se
	}
	return &SchemaError{Endpoint: endpoint, Err: err}
}
