package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "QBitMaster API",
        "description": "Multi-user qBittorrent dashboard with Jackett search and signed download links",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Accounts and sessions"},
        {"name": "Torrents", "description": "Torrent lifecycle and download links"},
        {"name": "Jackett", "description": "Indexer search"},
        {"name": "Notifications", "description": "Completion notifications"},
        {"name": "Users", "description": "User administration"},
        {"name": "Groups", "description": "Group administration"},
        {"name": "Downloads", "description": "Signed download link settings"},
        {"name": "Health", "description": "Dependency health"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "Status of api, database, redis, qbittorrent and jackett"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register account",
                "responses": {
                    "201": {"description": "Token pair and user info"},
                    "409": {"description": "Email or username taken"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "Token pair and user info"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "New token pair"},
                    "401": {"description": "Expired or revoked refresh token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "responses": {
                    "204": {"description": "Refresh token revoked"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change password",
                "responses": {
                    "204": {"description": "Password updated"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user info",
                "responses": {
                    "200": {"description": "User info from token claims"}
                }
            }
        },
        "/torrents": {
            "get": {
                "tags": ["Torrents"],
                "summary": "List torrents with live transfer state",
                "responses": {
                    "200": {"description": "Torrent list"}
                }
            }
        },
        "/torrents/stats": {
            "get": {
                "tags": ["Torrents"],
                "summary": "Torrent statistics",
                "responses": {
                    "200": {"description": "Counts and transfer speeds"}
                }
            }
        },
        "/torrents/magnet": {
            "post": {
                "tags": ["Torrents"],
                "summary": "Add torrent from magnet URI",
                "responses": {
                    "201": {"description": "Torrent recorded"},
                    "503": {"description": "qBittorrent unavailable"}
                }
            }
        },
        "/torrents/file": {
            "post": {
                "tags": ["Torrents"],
                "summary": "Add torrent from .torrent file",
                "responses": {
                    "201": {"description": "Torrent recorded"},
                    "503": {"description": "qBittorrent unavailable"}
                }
            }
        },
        "/torrents/{id}": {
            "delete": {
                "tags": ["Torrents"],
                "summary": "Delete torrent",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Removed"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/torrents/{id}/pause": {
            "post": {
                "tags": ["Torrents"],
                "summary": "Pause torrent",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Paused"}
                }
            }
        },
        "/torrents/{id}/resume": {
            "post": {
                "tags": ["Torrents"],
                "summary": "Resume torrent",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Resumed"}
                }
            }
        },
        "/torrents/{id}/files": {
            "get": {
                "tags": ["Torrents"],
                "summary": "List torrent files",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File list with per-file progress"}
                }
            }
        },
        "/torrents/{id}/download-link": {
            "post": {
                "tags": ["Torrents"],
                "summary": "Issue signed download link",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Signed URL with expiry"},
                    "409": {"description": "File incomplete or links unconfigured"}
                }
            }
        },
        "/jackett/search": {
            "get": {
                "tags": ["Jackett"],
                "summary": "Search indexers",
                "parameters": [
                    {"name": "query", "in": "query", "type": "string", "required": true},
                    {"name": "category", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Search results"},
                    "503": {"description": "Jackett not configured or unreachable"},
                    "504": {"description": "Jackett timed out"}
                }
            }
        },
        "/jackett/indexers": {
            "get": {
                "tags": ["Jackett"],
                "summary": "List indexers",
                "responses": {
                    "200": {"description": "Indexer list"}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List notifications",
                "responses": {
                    "200": {"description": "Newest 50 notifications"}
                }
            }
        },
        "/notifications/unread-count": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Count unread notifications",
                "responses": {
                    "200": {"description": "Unread count"}
                }
            }
        },
        "/notifications/{id}/read": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark one notification read",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Marked"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/notifications/read-all": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark all notifications read",
                "responses": {
                    "204": {"description": "Marked"}
                }
            }
        },
        "/admin/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"},
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "group_id", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Paginated users"}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create user",
                "responses": {
                    "201": {"description": "User created"},
                    "409": {"description": "Email or username exists"}
                }
            }
        },
        "/admin/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get user",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "User detail"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Users"],
                "summary": "Update user",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Updated user"}
                }
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Deactivate user",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deactivated"}
                }
            }
        },
        "/admin/groups": {
            "get": {
                "tags": ["Groups"],
                "summary": "List groups",
                "responses": {
                    "200": {"description": "Group list"}
                }
            },
            "post": {
                "tags": ["Groups"],
                "summary": "Create group",
                "responses": {
                    "201": {"description": "Group created"},
                    "409": {"description": "Name exists"}
                }
            }
        },
        "/admin/groups/{id}": {
            "get": {
                "tags": ["Groups"],
                "summary": "Get group",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Group detail"}
                }
            },
            "put": {
                "tags": ["Groups"],
                "summary": "Update group",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Updated group"}
                }
            },
            "delete": {
                "tags": ["Groups"],
                "summary": "Delete group",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted, members detached"}
                }
            }
        },
        "/admin/downloads/settings": {
            "get": {
                "tags": ["Downloads"],
                "summary": "Get download settings (secret masked)",
                "responses": {
                    "200": {"description": "Current settings"},
                    "409": {"description": "Not configured"}
                }
            },
            "put": {
                "tags": ["Downloads"],
                "summary": "Update download settings",
                "responses": {
                    "200": {"description": "Rendered proxy config"},
                    "400": {"description": "Validation failure"}
                }
            }
        },
        "/admin/system/metrics": {
            "get": {
                "tags": ["Health"],
                "summary": "System metrics snapshot",
                "responses": {
                    "200": {"description": "Request, cache and runtime counters"}
                }
            }
        },
        "/admin/downloads/proxy-config": {
            "get": {
                "tags": ["Downloads"],
                "summary": "Rendered reverse-proxy config",
                "responses": {
                    "200": {"description": "Proxy snippet"},
                    "409": {"description": "Not configured"}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "Envelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
