// Package queue 定义消息主题常量与通配模式，供发布/订阅使用.
package queue

// 主题命名规范：ee.<域>.<动作>，尽量稳定且向后兼容.
const (
	// 文件导入领域.
	TopicFileIngested = "ee.file.ingested" // 解析并入库成功
	TopicFileRejected = "ee.file.rejected" // 校验或解析失败，未入库
	TopicFileDeleted  = "ee.file.deleted"  // 记录被删除

	// TopicFileAll 订阅文件领域全部事件（NATS 通配）.
	TopicFileAll = "ee.file.>"
)

// FileTopics 文件领域的具体主题，供 CLI 与订阅者枚举.
var FileTopics = []string{TopicFileIngested, TopicFileRejected, TopicFileDeleted}

// IsFileTopic 判断是否为已知的文件主题.
func IsFileTopic(topic string) bool {
	for _, t := range FileTopics {
		if t == topic {
			return true
		}
	}

	return false
}
