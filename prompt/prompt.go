// Package prompt 保存生成卡片内容所用的提示词模板。
package prompt

import (
	"fmt"
	"strings"
)

// 两段内容在合并结果中的一级标题，也是卡片的分段依据。
const (
	QuickTitle     = "五分钟扫盲"
	FrameworkTitle = "深入学习框架"
)

// System 是每次对话的系统提示词。
const System = "你是一位擅长用简单易懂的方式讲解复杂概念的专家。"

const quickIntro = `你是一位擅长用简单易懂的方式讲解复杂概念的专家。
你的目标是让一个完全不懂 ${topic} 这个领域的人 **在5分钟内明白它的核心概念**，就像在和朋友聊天一样！
请使用 **简单、直白、生活化的语言**，避免生硬的专业术语，并在最后提供一个贴近生活的比喻。

### **📌 1. 它是什么？（What is it?）**
- 用最简单的方式解释 ${topic}，**不要长篇大论**，直接说重点。

### **📌 2. 它为什么重要？（Why is it important?）**
- **换个角度思考**，它为什么值得关心？它对你/公司/社会有什么影响？

### **📌 3. 它有哪些主要类型/构成？（Types/Classifications）**
- 这个东西有不同的种类吗？它的组成部分是什么？

### **📌 4. 它基本是怎么运作/处理的？（How does it work?）**
- **它的运行方式**、基本逻辑是什么？

### **📌 5. 用一个比喻/例子来理解？（Analogy/Example）**
- **用一个日常生活的例子**，让人一听就懂。

请用中文回答，确保内容通俗易懂。`

const framework = `## 2️⃣ **深入学习框架**
现在请为想要深入学习 ${topic} 的用户提供一个完整的学习框架：

### **📌 学习目标**
- 入门级：掌握哪些基础知识和技能
- 进阶级：需要深入理解的核心概念
- 专家级：需要达到的专业水平

### **📌 核心知识点**
- 列出必须掌握的关键概念
- 重点难点分析

### **📌 学习路径**
- 推荐的学习顺序
- 重点书籍和课程推荐
- 实战项目建议

### **📌 推荐资源**
- 优质的在线课程（MOOC）
- 实用工具和平台
- 学习社区和论坛

### **📌 实践项目**
- 入门级实践项目
- 进阶案例分析
- 高级实战建议

请用中文回答，确保内容具体且实用。`

// QuickIntro 返回“五分钟扫盲”提示词。
func QuickIntro(topic string) string {
	return Interpolate(quickIntro, Vars{"topic": topic})
}

// Framework 返回“深入学习框架”提示词。
func Framework(topic string) string {
	return Interpolate(framework, Vars{"topic": topic})
}

// Combine 把两段生成结果合并为带一级标题的文档。
func Combine(quick, detailed string) string {
	return fmt.Sprintf("# %s\n%s\n\n# %s\n%s\n",
		QuickTitle, strings.TrimSpace(quick),
		FrameworkTitle, strings.TrimSpace(detailed))
}
